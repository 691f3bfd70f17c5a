package protocol

import (
	"encoding/json"
	"testing"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	want := HandStarted{
		HandID:             "hand-1",
		Players:            []HandStartedPlayer{{PlayerID: "p1", Stack: 400, HoleCards: []string{"Ah", "Kd"}}},
		SmallBlind:         2,
		BigBlind:           4,
		DealerPosition:     0,
		CurrentPlayerToAct: "p1",
		MinRaise:           4,
	}

	frame, err := Encode(TypeHandStarted, want)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	env, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if env.Type != TypeHandStarted {
		t.Fatalf("expected type %q, got %q", TypeHandStarted, env.Type)
	}

	var got HandStarted
	if err := DecodePayload(env, &got); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if got.HandID != want.HandID || got.Players[0].PlayerID != want.Players[0].PlayerID {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestEnvelopeIsTypePayloadShape(t *testing.T) {
	frame, err := Encode(TypePing, struct{}{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(frame, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := raw["type"]; !ok {
		t.Fatalf("expected top-level 'type' field")
	}
	if _, ok := raw["payload"]; !ok {
		t.Fatalf("expected top-level 'payload' field")
	}
}

func TestActionRoundTrip(t *testing.T) {
	want := Action{HandID: "hand-1", Action: "raise", Amount: 12}
	frame, err := Encode(TypeAction, want)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	env, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	var got Action
	if err := DecodePayload(env, &got); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestErrorFrameRoundTrip(t *testing.T) {
	want := Error{Code: ErrCodeInvalidAmount, Message: "raise below minimum"}
	frame, err := Encode(TypeError, want)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	env, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if env.Type != TypeError {
		t.Fatalf("expected error type, got %q", env.Type)
	}
	var got Error
	if err := DecodePayload(env, &got); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	if _, err := Decode([]byte(`{not json`)); err == nil {
		t.Fatalf("expected error decoding malformed JSON")
	}
}

func TestWelcomeTableSnapshotNilCurrentHand(t *testing.T) {
	w := Welcome{
		PlayerID: "p1",
		Table: TableSnapshot{
			Seats:                []*Seat{{PlayerID: "p1", Name: "Alice", Stack: 400}, nil},
			CurrentHand:          nil,
			Pot:                  0,
			CommunityCards:       []string{},
			DealerButtonPosition: 0,
		},
	}
	frame, err := Encode(TypeWelcome, w)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	env, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	var got Welcome
	if err := DecodePayload(env, &got); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if got.Table.CurrentHand != nil {
		t.Fatalf("expected nil current_hand to survive round trip")
	}
	if got.Table.Seats[1] != nil {
		t.Fatalf("expected empty seat to round trip as nil")
	}
}

func TestHandCompletedRoundTrip(t *testing.T) {
	want := HandCompleted{
		HandID: "hand-1",
		Winners: []HandCompletedWinner{
			{PlayerID: "p1", AmountWon: 40, HandRank: "Full House"},
		},
		PotDistribution: []PotDistributionEntry{
			{PlayerID: "p1", PotIndex: 0, Amount: 40},
		},
		UpdatedStacks: map[string]int{"p1": 440, "p2": 360},
	}
	frame, err := Encode(TypeHandCompleted, want)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	env, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	var got HandCompleted
	if err := DecodePayload(env, &got); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if got.UpdatedStacks["p1"] != 440 || got.Winners[0].HandRank != "Full House" {
		t.Fatalf("round trip mismatch: got %+v", got)
	}
}
