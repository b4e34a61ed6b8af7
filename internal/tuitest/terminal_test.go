package tuitest

import (
	"bytes"
	"testing"
)

func TestTerminalResponderAnswersProbesInOrder(t *testing.T) {
	var replies bytes.Buffer
	tr := newTerminalResponder(&replies)

	tr.Process([]byte("hello\x1b]11;?\x07world\x1b[6"))
	tr.Process([]byte("n done"))

	want := "\x1b]11;rgb:0000/0000/0000\x07\x1b[1;1R"
	if got := replies.String(); got != want {
		t.Fatalf("replies mismatch: got %q want %q", got, want)
	}
	if tr.answers != 2 {
		t.Fatalf("expected 2 answers, got %d", tr.answers)
	}
}

func TestTerminalResponderIgnoresPlainOutput(t *testing.T) {
	var replies bytes.Buffer
	tr := newTerminalResponder(&replies)
	tr.Process(bytes.Repeat([]byte("> SYSTEM_READY...\n"), 40))
	if replies.Len() != 0 {
		t.Fatalf("unexpected replies %q", replies.String())
	}
	if len(tr.buf) > responderMaxBuffer {
		t.Fatalf("buffer not trimmed: %d bytes", len(tr.buf))
	}
}

func TestParseFramesStripsEscapes(t *testing.T) {
	raw := []byte("\x1b[2J\x1b[H\x1b[1mSYSTEM_STATUS: IDLE\x1b[0m   \r\n> SYSTEM_READY...\r\n\x1b[2J\x1b[H\x1b]0;title\x07SYSTEM_STATUS: PROCESSING\r\n")
	rec := &Recording{Raw: raw, Frames: parseFrames(raw)}

	if len(rec.Frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(rec.Frames))
	}
	if got := rec.Frames[0].Plain; got != "SYSTEM_STATUS: IDLE\n> SYSTEM_READY..." {
		t.Fatalf("first frame mismatch: %q", got)
	}
	final, ok := rec.FinalFrame()
	if !ok || final.Plain != "SYSTEM_STATUS: PROCESSING" {
		t.Fatalf("final frame mismatch: %q", final.Plain)
	}
	if !rec.Contains("> SYSTEM_READY...") || rec.Contains("\x1b[1m") {
		t.Fatal("Contains should match plain text only")
	}
}

func TestCaptureBufferContains(t *testing.T) {
	var out captureBuffer
	out.Write([]byte("\x1b[32m> INPUT_RECEIVED"))
	out.Write([]byte(": \"hello...\"\x1b[0m"))
	if !out.Contains(`> INPUT_RECEIVED: "hello..."`) {
		t.Fatal("expected text across writes to match")
	}
}

func TestLastFrameContaining(t *testing.T) {
	raw := []byte("\x1b[2JAGENT_RESPONSE one\n\x1b[2JAGENT_RESPONSE two\n\x1b[2Jbye\n")
	rec := &Recording{Raw: raw, Frames: parseFrames(raw)}
	frame, ok := rec.LastFrameContaining("AGENT_RESPONSE")
	if !ok || frame.Plain != "AGENT_RESPONSE two" {
		t.Fatalf("unexpected frame %q (ok=%v)", frame.Plain, ok)
	}
	if _, ok := rec.LastFrameContaining("missing"); ok {
		t.Fatal("expected no frame for missing text")
	}
}
