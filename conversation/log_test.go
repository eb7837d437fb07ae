package conversation_test

import (
	"sync"
	"testing"

	"github.com/tailored-agentic-units/roundtable/conversation"
	"github.com/tailored-agentic-units/roundtable/core/protocol"
)

func TestLog_Append_AssignsSequences(t *testing.T) {
	log := conversation.NewLog()

	first := log.Append(protocol.UserTurn("question"))
	second := log.Append(protocol.NewTurn(protocol.RoleAssistant, "Alpha", "answer"))

	if first.Sequence != 0 {
		t.Errorf("first sequence = %d, want 0", first.Sequence)
	}
	if second.Sequence != 1 {
		t.Errorf("second sequence = %d, want 1", second.Sequence)
	}
}

func TestLog_Turns_Order(t *testing.T) {
	log := conversation.NewLog()

	speakers := []string{"Alpha", "Beta", "Alpha", "Gamma"}
	for _, speaker := range speakers {
		log.Append(protocol.NewTurn(protocol.RoleAssistant, speaker, "content"))
	}

	turns := log.Turns()
	if len(turns) != len(speakers) {
		t.Fatalf("got %d turns, want %d", len(turns), len(speakers))
	}
	for i, turn := range turns {
		if turn.Speaker != speakers[i] {
			t.Errorf("turn %d: got speaker %q, want %q", i, turn.Speaker, speakers[i])
		}
		if turn.Sequence != i {
			t.Errorf("turn %d: got sequence %d, want %d", i, turn.Sequence, i)
		}
	}
}

func TestLog_Turns_DefensiveCopy(t *testing.T) {
	log := conversation.NewLog()
	log.Append(protocol.UserTurn("original"))

	turns := log.Turns()
	turns[0].Content = "mutated"

	if got := log.Turns()[0].Content; got != "original" {
		t.Errorf("log mutated through Turns() copy: got %q", got)
	}
}

func TestLog_SequencesStrictlyIncreasing(t *testing.T) {
	log := conversation.NewLog()

	var last int = -1
	for i := 0; i < 50; i++ {
		turn := log.Append(protocol.UserTurn("turn"))
		if turn.Sequence <= last {
			t.Fatalf("sequence %d not greater than previous %d", turn.Sequence, last)
		}
		last = turn.Sequence
	}
}

func TestLog_Reset_DoesNotReuseSequences(t *testing.T) {
	log := conversation.NewLog()
	log.Append(protocol.UserTurn("one"))
	log.Append(protocol.UserTurn("two"))

	log.Reset()

	if log.Len() != 0 {
		t.Fatalf("got %d turns after Reset, want 0", log.Len())
	}

	turn := log.Append(protocol.UserTurn("three"))
	if turn.Sequence != 2 {
		t.Errorf("sequence after Reset = %d, want 2 (never reused)", turn.Sequence)
	}
}

func TestLog_ConcurrentReaders(t *testing.T) {
	log := conversation.NewLog()
	for i := 0; i < 10; i++ {
		log.Append(protocol.UserTurn("turn"))
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := len(log.Turns()); got != 10 {
					t.Errorf("got %d turns, want 10", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}
