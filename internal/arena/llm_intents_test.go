package arena

import "testing"

func TestParseIntents(t *testing.T) {
	raw := `[
		{"kind": "self_rescue"},
		{"kind": "donate", "target_id": "Grok", "amount": 500},
		{"kind": "loan", "target_id": "DeepSeek", "amount": 1000, "interest_rate": 0.2, "duration_rounds": 5}
	]`

	intents, err := ParseIntents(raw)
	if err != nil {
		t.Fatalf("ParseIntents failed: %v", err)
	}
	if len(intents) != 3 {
		t.Fatalf("Expected 3 intents, got %d", len(intents))
	}
	if intents[0].Kind != IntentSelfRescue {
		t.Errorf("Expected self_rescue, got %q", intents[0].Kind)
	}
	if intents[1].TargetID != "Grok" || intents[1].Amount != 500 {
		t.Errorf("Expected donate Grok 500, got %+v", intents[1])
	}
	if intents[2].InterestRate != 0.2 || intents[2].DurationRounds != 5 {
		t.Errorf("Expected loan terms preserved, got %+v", intents[2])
	}
}

func TestParseIntentsToleratesCodeFences(t *testing.T) {
	raw := "My moves:\n```json\n[{\"kind\": \"resurrect\", \"target_id\": \"ChatGPT\"}]\n```"

	intents, err := ParseIntents(raw)
	if err != nil {
		t.Fatalf("ParseIntents failed on fenced output: %v", err)
	}
	if len(intents) != 1 || intents[0].Kind != IntentResurrect {
		t.Errorf("Expected one resurrect intent, got %+v", intents)
	}
}

func TestParseIntentsDropsUnknownKinds(t *testing.T) {
	raw := `[{"kind": "steal", "target_id": "Grok"}, {"kind": "donate", "target_id": "Grok", "amount": 100}]`

	intents, err := ParseIntents(raw)
	if err != nil {
		t.Fatalf("ParseIntents failed: %v", err)
	}
	if len(intents) != 1 || intents[0].Kind != IntentDonate {
		t.Errorf("Expected unknown kinds filtered, got %+v", intents)
	}
}

func TestParseIntentsEmptyArray(t *testing.T) {
	intents, err := ParseIntents("[]")
	if err != nil {
		t.Fatalf("ParseIntents failed on empty array: %v", err)
	}
	if len(intents) != 0 {
		t.Errorf("Expected no intents, got %d", len(intents))
	}
}

func TestParseIntentsRejectsGarbage(t *testing.T) {
	if _, err := ParseIntents("I refuse to participate in the economy."); err == nil {
		t.Errorf("Expected error for prose output")
	}
}
