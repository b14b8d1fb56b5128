package platform

import "testing"

func TestNewProvider_UnsupportedPlatform(t *testing.T) {
	// Temporarily clear the provider func to simulate unsupported platform
	orig := NewProviderFunc
	NewProviderFunc = nil
	defer func() { NewProviderFunc = orig }()

	_, err := NewProvider()
	if err == nil {
		t.Fatal("expected error on unsupported platform")
	}
	if err != ErrUnsupported {
		t.Errorf("expected ErrUnsupported, got: %v", err)
	}
}

func TestNewProvider_UsesRegisteredFunc(t *testing.T) {
	orig := NewProviderFunc
	defer func() { NewProviderFunc = orig }()

	want := &Provider{}
	NewProviderFunc = func() (*Provider, error) { return want, nil }

	got, err := NewProvider()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Error("expected the registered provider")
	}
}
