package ws

import "testing"

func TestRegistryRegisterAndLookup(t *testing.T) {
	registry := NewRegistry()
	handle := &fakeHandle{}

	if prior := registry.Register(1, handle); prior != nil {
		t.Fatalf("expected no prior handle on first register")
	}
	if !registry.IsOnline(1) {
		t.Fatalf("expected user to be online")
	}
	got, ok := registry.Handle(1)
	if !ok || got != Handle(handle) {
		t.Fatalf("expected registered handle back")
	}
	if registry.OnlineCount() != 1 {
		t.Fatalf("expected one online user, got %d", registry.OnlineCount())
	}
}

func TestRegistryReplaceKeepsLatest(t *testing.T) {
	registry := NewRegistry()
	first := &fakeHandle{}
	second := &fakeHandle{}

	registry.Register(1, first)
	prior := registry.Register(1, second)

	if prior != Handle(first) {
		t.Fatalf("expected first handle to be returned as displaced")
	}
	got, ok := registry.Handle(1)
	if !ok || got != Handle(second) {
		t.Fatalf("expected second handle to be the only reachable one")
	}
	if registry.OnlineCount() != 1 {
		t.Fatalf("expected exactly one entry after replacement")
	}
}

func TestRegistryUnregister(t *testing.T) {
	registry := NewRegistry()
	registry.Register(1, &fakeHandle{})

	registry.Unregister(1)
	if _, ok := registry.Handle(1); ok {
		t.Fatalf("expected handle absent after unregister")
	}

	// unknown user is a no-op
	registry.Unregister(42)
	if registry.IsOnline(42) {
		t.Fatalf("expected unknown user to stay offline")
	}
}

func TestRegistryUnregisterHandleSkipsReplacement(t *testing.T) {
	registry := NewRegistry()
	stale := &fakeHandle{}
	current := &fakeHandle{}

	registry.Register(1, stale)
	registry.Register(1, current)

	if registry.UnregisterHandle(1, stale) {
		t.Fatalf("stale handle must not evict the replacement")
	}
	if !registry.IsOnline(1) {
		t.Fatalf("expected replacement to remain registered")
	}
	if !registry.UnregisterHandle(1, current) {
		t.Fatalf("expected current handle to be removable")
	}
	if registry.IsOnline(1) {
		t.Fatalf("expected user offline after removing current handle")
	}
}
