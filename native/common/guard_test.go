package common

import (
	"errors"
	"testing"
)

type pauseMap map[string]bool

func (p pauseMap) IsPaused(module string) bool { return p[module] }

func TestGuard(t *testing.T) {
	if err := Guard(nil, "fcashwrap"); err != nil {
		t.Fatalf("nil view must pass: %v", err)
	}
	if err := Guard(pauseMap{"fcashwrap": true}, ""); err != nil {
		t.Fatalf("empty module must pass: %v", err)
	}
	if err := Guard(pauseMap{"fcashwrap": true}, "fcashwrap"); !errors.Is(err, ErrModulePaused) {
		t.Fatalf("expected ErrModulePaused, got %v", err)
	}
	if err := Guard(pauseMap{"fcashwrap": false}, "fcashwrap"); err != nil {
		t.Fatalf("unpaused module must pass: %v", err)
	}
}

func TestLatch(t *testing.T) {
	var latch Latch
	if err := latch.Acquire(); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if err := latch.Acquire(); !errors.Is(err, ErrReentrantCall) {
		t.Fatalf("expected ErrReentrantCall, got %v", err)
	}
	latch.Release()
	if err := latch.Acquire(); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
}

func TestLatchNilReceiver(t *testing.T) {
	var latch *Latch
	if err := latch.Acquire(); err != nil {
		t.Fatalf("nil latch must be permissive: %v", err)
	}
	latch.Release()
}
