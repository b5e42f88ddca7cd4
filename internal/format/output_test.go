package format

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	TicketID string   `json:"ticketId"`
	Tags     []string `json:"tags"`
}

func TestWrite_Formats(t *testing.T) {
	t.Parallel()

	v := sample{TicketID: "t1", Tags: []string{"bug"}}

	var js bytes.Buffer
	if err := Write(&js, v, "", false); err != nil {
		t.Fatalf("json: %v", err)
	}
	if got := js.String(); got != "{\"ticketId\":\"t1\",\"tags\":[\"bug\"]}\n" {
		t.Fatalf("json = %q", got)
	}

	var y bytes.Buffer
	if err := Write(&y, v, "yaml", false); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(y.String(), "ticketId: t1") || !strings.Contains(y.String(), "- bug") {
		t.Fatalf("yaml = %q", y.String())
	}

	if err := Write(&y, v, "edn", false); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
