package errors

import (
	stderrors "errors"
	"testing"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	err := New(ErrCodeInvalidRecord, "row %d: region must not be empty", 3)

	if GetCode(err) != ErrCodeInvalidRecord {
		t.Errorf("GetCode = %s, want %s", GetCode(err), ErrCodeInvalidRecord)
	}
	if !Is(err, ErrCodeInvalidRecord) {
		t.Error("Is should match the error's code")
	}
	if Is(err, ErrCodeStorage) {
		t.Error("Is should not match a different code")
	}
	if err.Error() == "" {
		t.Error("expected a non-empty message")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(ErrCodeStorage, cause, "save snapshot %s", "abc123")

	if GetCode(err) != ErrCodeStorage {
		t.Errorf("GetCode = %s, want %s", GetCode(err), ErrCodeStorage)
	}
	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should unwrap to its cause")
	}
}

func TestGetCodeOnForeignError(t *testing.T) {
	if got := GetCode(stderrors.New("plain")); got != ErrCodeInternal {
		t.Errorf("GetCode on a plain error = %s, want %s", got, ErrCodeInternal)
	}
	if got := GetCode(nil); got != "" {
		t.Errorf("GetCode(nil) = %s, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "user-facing code keeps its message",
			err:  New(ErrCodeInvalidDate, "date %q must start with YYYY-MM", "April"),
			want: `date "April" must start with YYYY-MM`,
		},
		{
			name: "internal code gets a generic message",
			err:  New(ErrCodeInternal, "nil pointer in layout pass"),
			want: "an internal error occurred",
		},
		{
			name: "foreign error gets a generic message",
			err:  stderrors.New("dial tcp: connection refused"),
			want: "an internal error occurred",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage = %q, want %q", got, tt.want)
			}
		})
	}
}
