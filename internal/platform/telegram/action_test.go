package telegram

import "testing"

func TestActionRoundTrip(t *testing.T) {
	cases := []Action{
		{Kind: ActionSelectTopic, Value: "server_idea"},
		{Kind: ActionReply, Value: "123456"},
		{Kind: ActionClaim, Value: "123456"},
		{Kind: ActionClose, Value: "123456"},
	}
	for _, want := range cases {
		got, ok := ParseAction(want.Encode())
		if !ok {
			t.Fatalf("ParseAction(%q) = not ok", want.Encode())
		}
		if got != want {
			t.Fatalf("round trip: got %+v, want %+v", got, want)
		}
	}
}

func TestParseActionStripsCallbackPrefix(t *testing.T) {
	got, ok := ParseAction("\ftopic|recruitment_question")
	if !ok {
		t.Fatal("prefixed data rejected")
	}
	if got.Kind != ActionSelectTopic || got.Value != "recruitment_question" {
		t.Fatalf("got %+v", got)
	}
}

func TestParseActionRejectsMalformedData(t *testing.T) {
	for _, data := range []string{"", "topic", "|value", "topic|"} {
		if _, ok := ParseAction(data); ok {
			t.Fatalf("ParseAction(%q) accepted malformed data", data)
		}
	}
}
