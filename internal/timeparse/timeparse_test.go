package timeparse

import (
	"testing"
	"time"
)

func TestEmptyMeansNow(t *testing.T) {
	now := time.Unix(1000, 0)
	got, err := Parse("", now)
	if err != nil || !got.Equal(now) {
		t.Fatalf("expected now unchanged, got %v err %v", got, err)
	}
}

func TestSignedIntegerIsMinutesOffset(t *testing.T) {
	now := time.Unix(1000, 0)
	got, err := Parse("-15", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := now.Add(-15 * time.Minute)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	got2, err := Parse("+30", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want2 := now.Add(30 * time.Minute)
	if !got2.Equal(want2) {
		t.Fatalf("expected %v, got %v", want2, got2)
	}
}

func TestHumanExpressionYesterday(t *testing.T) {
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	got, err := Parse("yesterday", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Day() != 30 {
		t.Fatalf("expected yesterday to resolve to the 30th, got %v", got)
	}
}

func TestUnrecognizedExpressionRejected(t *testing.T) {
	now := time.Unix(1000, 0)
	_, err := Parse("zzz not a time at all zzz", now)
	if err == nil {
		t.Fatal("expected an error for a nonsense expression")
	}
}
