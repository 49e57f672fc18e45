package archive

import (
	"bytes"
	"os"
	"testing"
	"time"

	"mood-engine/internal/capture"
)

var mediaStub = capture.RecordedMedia{
	Data:     []byte("webm-capture"),
	MIMEType: "video/webm",
	Modality: capture.VideoAudio,
}

func TestKey(t *testing.T) {
	at := time.Date(2026, 3, 10, 14, 5, 9, 0, time.UTC)
	got := Key("video+audio", at)
	want := "captures/2026/03/10/140509-video+audio.webm"
	if got != want {
		t.Errorf("Key = %q, want %q", got, want)
	}
}

func TestLocalProviderRoundTrip(t *testing.T) {
	provider := NewLocalProvider(t.TempDir())

	key := Key("audio", time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	if err := provider.Put(key, bytes.NewReader([]byte("capture-bytes")), "audio/webm"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	keys, err := provider.List("captures/")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(keys) != 1 || keys[0] != key {
		t.Errorf("List = %v, want [%s]", keys, key)
	}

	if err := provider.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	keys, _ = provider.List("captures/")
	if len(keys) != 0 {
		t.Errorf("Expected empty after delete, got %v", keys)
	}
}

func TestLocalProviderListPrefixFilter(t *testing.T) {
	provider := NewLocalProvider(t.TempDir())
	provider.Put("captures/2026/03/10/090000-audio.webm", bytes.NewReader([]byte("a")), "audio/webm")
	provider.Put("captures/2026/03/11/090000-audio.webm", bytes.NewReader([]byte("b")), "audio/webm")

	keys, err := provider.List("captures/2026/03/10/")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(keys) != 1 {
		t.Errorf("Expected 1 key under the prefix, got %v", keys)
	}
}

func TestArchiverDisabledIsNil(t *testing.T) {
	// A nil archiver is the documented no-op; Save must tolerate it.
	var a *Archiver
	a.Save(nil)
}

func TestArchiverSaveWritesInBackground(t *testing.T) {
	dir := t.TempDir()
	a := &Archiver{provider: NewLocalProvider(dir), now: func() time.Time {
		return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	}}

	a.Save(&mediaStub)

	// Background write: poll for the file.
	deadline := time.After(2 * time.Second)
	for {
		keys, _ := a.provider.List("captures/")
		if len(keys) == 1 {
			data, err := os.ReadFile(dir + "/" + keys[0])
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if string(data) != "webm-capture" {
				t.Errorf("Archived %q", data)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("Archive never landed")
		case <-time.After(20 * time.Millisecond):
		}
	}
}
