package intent

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/kalambet/hireagent/internal/engine"
)

// mockService implements engine.Service for testing.
type mockService struct {
	response string
	err      error
	delay    time.Duration

	calls    int
	messages []engine.Message
}

func (m *mockService) Invoke(ctx context.Context, messages []engine.Message) (string, error) {
	m.calls++
	m.messages = messages
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return m.response, m.err
}

func TestExtract_FintechScenario(t *testing.T) {
	mock := &mockService{
		response: `{"industry":"fintech","location":"Mumbai","roles":["backend developer","UI/UX designer"],"number_of_positions":5,"urgency":true}`,
	}
	e := NewExtractor(mock)
	got, err := e.Extract(context.Background(), "We need 3 backend developers and 2 UI/UX designers urgently in Mumbai for a fintech startup.")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	want := HiringIntent{
		Industry:      "fintech",
		Location:      "Mumbai",
		Roles:         []string{"backend developer", "UI/UX designer"},
		PositionCount: 5,
		Urgent:        true,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %+v, want %+v", got, want)
	}
}

func TestExtract_DeliveryLeadScenario(t *testing.T) {
	mock := &mockService{
		response: `{"industry":"","location":"Bangalore","roles":["delivery lead"],"number_of_positions":4,"urgency":false}`,
	}
	e := NewExtractor(mock)
	got, err := e.Extract(context.Background(), "We're hiring 4 delivery leads in Bangalore. No urgency or deadline, we're flexible.")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	want := HiringIntent{
		Location:      "Bangalore",
		Roles:         []string{"delivery lead"},
		PositionCount: 4,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %+v, want %+v", got, want)
	}
}

func TestExtract_SingleSystemMessage(t *testing.T) {
	mock := &mockService{response: `{}`}
	e := NewExtractor(mock)
	e.Extract(context.Background(), "2 SDRs in Austin")

	if mock.calls != 1 {
		t.Fatalf("calls = %d, want 1", mock.calls)
	}
	if len(mock.messages) != 1 || mock.messages[0].Role != engine.RoleSystem {
		t.Fatalf("messages = %+v, want one system message", mock.messages)
	}
	if want := `"""2 SDRs in Austin"""`; !contains(mock.messages[0].Content, want) {
		t.Errorf("prompt does not contain fenced input %s", want)
	}
}

func TestExtract_MalformedJSON(t *testing.T) {
	mock := &mockService{response: `not valid json {{{`}
	e := NewExtractor(mock)
	got, err := e.Extract(context.Background(), "some request")

	if err != nil {
		t.Fatalf("err = %v, want nil on parse failure", err)
	}
	if !reflect.DeepEqual(got, Default()) {
		t.Errorf("Extract() = %+v, want defaults", got)
	}
}

func TestExtract_CodeFencedJSON(t *testing.T) {
	mock := &mockService{
		response: "Here you go:\n```json\n{\"location\":\"Pune\",\"roles\":[\"QA engineer\"],\"number_of_positions\":2}\n```",
	}
	e := NewExtractor(mock)
	got, err := e.Extract(context.Background(), "2 QA engineers in Pune")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Location != "Pune" || got.PositionCount != 2 {
		t.Errorf("Extract() = %+v", got)
	}
}

func TestExtract_OmittedFieldsUseDefaults(t *testing.T) {
	mock := &mockService{response: `{"industry":"retail","roles":["cashier"]}`}
	e := NewExtractor(mock)
	got, _ := e.Extract(context.Background(), "need cashiers for retail")

	if got.PositionCount != DefaultPositionCount {
		t.Errorf("PositionCount = %d, want %d", got.PositionCount, DefaultPositionCount)
	}
	if got.Urgent {
		t.Error("Urgent = true, want false when urgency omitted")
	}
}

func TestExtract_ServiceDown(t *testing.T) {
	mock := &mockService{err: fmt.Errorf("connection refused")}
	e := NewExtractor(mock)
	got, err := e.Extract(context.Background(), "hello")

	if !errors.Is(err, engine.ErrServiceCall) {
		t.Fatalf("err = %v, want ErrServiceCall", err)
	}
	if !reflect.DeepEqual(got, Default()) {
		t.Errorf("Extract() = %+v, want defaults on error", got)
	}
}

func TestExtract_Timeout(t *testing.T) {
	mock := &mockService{response: `{"location":"Delhi"}`, delay: 5 * time.Second}
	e := NewExtractor(engine.WithTimeout(mock, 100*time.Millisecond))

	start := time.Now()
	got, err := e.Extract(context.Background(), "query")
	elapsed := time.Since(start)

	if elapsed > time.Second {
		t.Errorf("Extract took %v, want < 1s", elapsed)
	}
	if !errors.Is(err, engine.ErrServiceCall) {
		t.Errorf("err = %v, want ErrServiceCall on timeout", err)
	}
	if got.Location != "" {
		t.Errorf("Location = %q, want zero value on timeout", got.Location)
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	mock := &mockService{response: `{"location":"Delhi"}`}
	e := NewExtractor(mock)
	got, err := e.Extract(context.Background(), "   ")

	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if mock.calls != 0 {
		t.Errorf("calls = %d, want 0 for blank input", mock.calls)
	}
	if !reflect.DeepEqual(got, Default()) {
		t.Errorf("Extract() = %+v, want defaults", got)
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
