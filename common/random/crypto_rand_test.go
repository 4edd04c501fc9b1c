package random_test

import (
	"testing"

	"github.com/fuchsia74/assistant-gateway/common/random"
)

func TestUniqueness(t *testing.T) {
	tests := []struct {
		name       string
		generator  func() string
		iterations int
	}{
		{
			name:       "GetUUID should always generate unique values",
			generator:  random.GetUUID,
			iterations: 10000,
		},
		{
			name: "GetRandomString(20) should generate unique values",
			generator: func() string {
				return random.GetRandomString(20)
			},
			iterations: 10000,
		},
		{
			name: "GetRandomNumberString(15) should generate unique values",
			generator: func() string {
				return random.GetRandomNumberString(15)
			},
			iterations: 10000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := make(map[string]bool, tt.iterations)
			for i := 0; i < tt.iterations; i++ {
				v := tt.generator()
				if seen[v] {
					t.Fatalf("duplicate value generated after %d iterations: %s", i, v)
				}
				seen[v] = true
			}
		})
	}
}

func TestGetRandomStringLength(t *testing.T) {
	for _, length := range []int{1, 10, 48} {
		if got := random.GetRandomString(length); len(got) != length {
			t.Errorf("GetRandomString(%d) returned %d characters", length, len(got))
		}
		if got := random.GetRandomNumberString(length); len(got) != length {
			t.Errorf("GetRandomNumberString(%d) returned %d characters", length, len(got))
		}
	}
}
