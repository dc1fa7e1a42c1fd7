package services

import (
	"context"
	"errors"
	"testing"
)

func TestHistoryDeleteRejectsMalformedID(t *testing.T) {
	s := &HistoryService{}

	err := s.Delete(context.Background(), "user-1", "not-a-hex-id")
	if !errors.Is(err, ErrHistoryNotFound) {
		t.Fatalf("Delete with malformed id = %v, want ErrHistoryNotFound", err)
	}
}
