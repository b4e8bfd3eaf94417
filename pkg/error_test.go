package pkg

import (
	"errors"
	"testing"
)

func TestTransactionStatus_String(t *testing.T) {
	tests := []struct {
		status TransactionStatus
		want   string
	}{
		{TransactionSuccess, "success"},
		{TransactionNoResponse, "no-response"},
		{TransactionCRC, "crc"},
		{TransactionNAK, "nak"},
		{TransactionStall, "stall"},
		{TransactionToggle, "toggle"},
		{TransactionProtocol, "protocol"},
		{TransactionStatus(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("TransactionStatus.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransactionStatus_Error(t *testing.T) {
	tests := []struct {
		status  TransactionStatus
		wantErr error
	}{
		{TransactionSuccess, nil},
		{TransactionNoResponse, ErrNoResponse},
		{TransactionCRC, ErrCRC},
		{TransactionNAK, ErrNAK},
		{TransactionStall, ErrStall},
		{TransactionToggle, ErrToggle},
		{TransactionProtocol, ErrProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			err := tt.status.Error()
			if tt.wantErr == nil && err != nil {
				t.Errorf("TransactionStatus.Error() = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("TransactionStatus.Error() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransactionStatus_Retryable(t *testing.T) {
	retry := map[TransactionStatus]bool{
		TransactionSuccess:    false,
		TransactionNoResponse: true,
		TransactionCRC:        true,
		TransactionNAK:        true,
		TransactionStall:      false,
		TransactionToggle:     false,
		TransactionProtocol:   false,
	}
	for status, want := range retry {
		if got := status.Retryable(); got != want {
			t.Errorf("%v.Retryable() = %v, want %v", status, got, want)
		}
	}
}
