package session

import (
	"errors"
	"math/rand"
	"slices"
	"testing"

	"quiz-session-service/internal/domain"
)

func TestNewQueueCopiesAndTruncates(t *testing.T) {
	content := sampleContent(4)
	count := 2
	q := NewQueue(content, domain.QuizSettings{Mode: domain.ModeStandard, QuestionCount: &count}, rand.New(rand.NewSource(1)))

	if q.Len() != 2 {
		t.Fatalf("expected 2 slots, got %d", q.Len())
	}
	first, _ := q.At(0)
	first.Options["a"] = "mutated"
	if content.Questions[0].Options["a"] == "mutated" {
		t.Fatalf("queue slot shares options with quiz content")
	}
}

func TestNewQueueIgnoresOversizedCap(t *testing.T) {
	count := 10
	q := NewQueue(sampleContent(3), domain.QuizSettings{QuestionCount: &count}, rand.New(rand.NewSource(1)))
	if q.Len() != 3 {
		t.Fatalf("expected all 3 questions, got %d", q.Len())
	}
}

func TestNewQueueShuffleIsPermutation(t *testing.T) {
	content := sampleContent(8)
	q := NewQueue(content, domain.QuizSettings{Shuffle: true}, rand.New(rand.NewSource(42)))

	got := make([]int64, 0, q.Len())
	for _, s := range q.Slots() {
		got = append(got, s.ID)
	}
	want := content.QuestionIDs()
	slices.Sort(got)
	if !slices.Equal(got, want) {
		t.Fatalf("shuffle lost or duplicated questions: %v", got)
	}
}

func TestScheduleRepeatSpacing(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		rnd := rand.New(rand.NewSource(seed))
		for length := 1; length <= 6; length++ {
			for i := 0; i < length; i++ {
				q := NewQueue(sampleContent(length), domain.QuizSettings{}, rnd)
				j, err := q.ScheduleRepeat(i, rnd)
				if err != nil {
					t.Fatalf("schedule repeat: %v", err)
				}
				if q.Len() != length+1 {
					t.Fatalf("expected queue to grow by one, got %d", q.Len())
				}
				if j <= i {
					t.Fatalf("repeat at %d not after source %d", j, i)
				}
				if length-i-1 >= 2 {
					if j != i+2 && j != i+3 {
						t.Fatalf("L=%d i=%d: expected repeat at i+2 or i+3, got %d", length, i, j)
					}
				} else if j != length {
					t.Fatalf("L=%d i=%d: expected append at %d, got %d", length, i, length, j)
				}
				src, _ := q.At(i)
				rep, _ := q.At(j)
				if src.ID != rep.ID {
					t.Fatalf("repeat slot holds question %d, want %d", rep.ID, src.ID)
				}
			}
		}
	}
}

func TestScheduleRepeatRejectsOutOfRange(t *testing.T) {
	q := NewQueue(sampleContent(2), domain.QuizSettings{}, rand.New(rand.NewSource(1)))
	if _, err := q.ScheduleRepeat(5, rand.New(rand.NewSource(1))); !errors.Is(err, domain.ErrInvariantViolation) {
		t.Fatalf("expected invariant violation, got %v", err)
	}
	if q.Len() != 2 {
		t.Fatalf("queue changed on failed repeat")
	}
}
