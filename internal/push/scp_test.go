package push

import (
	"context"
	"strings"
	"testing"
)

func TestSCP_MissingDestinationIsHardFailure(t *testing.T) {
	cases := []SCP{
		{},
		{User: "root"},
		{User: "root", Host: "collector.example"},
	}
	for _, s := range cases {
		err := s.Push(context.Background(), "/tmp/result.json")
		if err == nil {
			t.Fatalf("want error for %+v", s)
		}
		if !strings.Contains(err.Error(), "CN_PUSH") {
			t.Fatalf("error should name the missing keys: %v", err)
		}
	}
}
