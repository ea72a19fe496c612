package chat

import "testing"

func TestParseRequestSingleTurn(t *testing.T) {
	req := ParseRequest([]byte(`{"message":"Szia!","count":3,"conversationId":" abc "}`))

	text, ok := req.SingleMessage()
	if !ok || text != "Szia!" {
		t.Fatalf("unexpected message: %q (%v)", text, ok)
	}
	if req.Count != 3 {
		t.Fatalf("expected count 3, got %d", req.Count)
	}
	if req.ConversationID != "abc" {
		t.Fatalf("expected trimmed conversation id, got %q", req.ConversationID)
	}
}

func TestParseRequestCount(t *testing.T) {
	tests := []struct {
		body string
		want int
	}{
		{`{"count":10}`, 10},
		{`{"count":"12"}`, 12},
		{`{"count":9.7}`, 9},
		{`{"count":-4}`, 0},
		{`{"count":null}`, 0},
		{`{"count":"many"}`, 0},
		{`{"count":1e300}`, 2147483647},
		{`{}`, 0},
	}

	for _, tc := range tests {
		if got := ParseRequest([]byte(tc.body)).Count; got != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.body, tc.want, got)
		}
	}
}

func TestParseRequestInvalidJSONIsEmpty(t *testing.T) {
	for _, body := range []string{``, `not json`, `[1,2]`, `"text"`} {
		req := ParseRequest([]byte(body))
		if _, ok := req.SingleMessage(); ok {
			t.Errorf("%q: expected no message", body)
		}
		if _, present, _ := req.RawMessages(); present {
			t.Errorf("%q: expected no raw messages", body)
		}
	}
}

func TestRawMessages(t *testing.T) {
	req := ParseRequest([]byte(`{"messages":[{"role":"system","content":"s"},{"role":"user","content":"u"}]}`))

	msgs, present, err := req.RawMessages()
	if err != nil || !present {
		t.Fatalf("expected valid raw messages, got present=%v err=%v", present, err)
	}
	if len(msgs) != 2 || msgs[0].Role != RoleSystem || msgs[1].Content != "u" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
}

func TestRawMessagesRejectsUnknownRole(t *testing.T) {
	req := ParseRequest([]byte(`{"messages":[{"role":"robot","content":"x"}]}`))

	_, present, err := req.RawMessages()
	if !present || err != ErrUnknownRole {
		t.Fatalf("expected ErrUnknownRole, got present=%v err=%v", present, err)
	}
}
