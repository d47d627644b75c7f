package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCellValue_MarshalJSON_Int(t *testing.T) {
	c := NewCellValue(int64(42))
	b, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(b) != "42" {
		t.Errorf("expected 42, got %s", b)
	}
}

func TestCellValue_MarshalJSON_Datetime(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := NewCellValue(ts)
	b, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		t.Fatalf("expected a JSON string, got %s", b)
	}
	if s != "2026-01-02T03:04:05Z" {
		t.Errorf("expected RFC3339 string, got %s", s)
	}
}

func TestCellValue_MarshalJSON_Bytes(t *testing.T) {
	c := NewCellValue([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	b, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		t.Fatalf("expected a JSON string, got %s", b)
	}
	if s != "3q2+7w==" {
		t.Errorf("expected base64 bytes, got %s", s)
	}
}

func TestCellValue_MarshalJSON_Null(t *testing.T) {
	b, err := json.Marshal(NullCell)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(b) != "null" {
		t.Errorf("expected null, got %s", b)
	}
}

func TestCellValue_IsNull(t *testing.T) {
	if !NewCellValue(nil).IsNull() {
		t.Error("expected nil value to be null")
	}
	if NewCellValue(int64(0)).IsNull() {
		t.Error("expected zero int value to not be null")
	}
}

func TestCellValue_String(t *testing.T) {
	if got := NewCellValue("hello").String(); got != "hello" {
		t.Errorf("expected hello, got %s", got)
	}
	if got := NewCellValue(int64(7)).String(); got != "7" {
		t.Errorf("expected 7, got %s", got)
	}
}
