package mqtt

import "testing"

func msg(topic string) bufferedMsg {
	return bufferedMsg{topic: topic, payload: []byte("x")}
}

func TestOfflineQueueFIFO(t *testing.T) {
	q := newOfflineQueue(4)
	q.push(msg("a"))
	q.push(msg("b"))
	q.push(msg("c"))

	out := q.drain()
	if len(out) != 3 {
		t.Fatalf("drained %d, want 3", len(out))
	}
	for i, want := range []string{"a", "b", "c"} {
		if out[i].topic != want {
			t.Errorf("msg %d topic = %q, want %q", i, out[i].topic, want)
		}
	}
	if q.len() != 0 {
		t.Errorf("queue should be empty after drain, len = %d", q.len())
	}
}

func TestOfflineQueueDropsOldestWhenFull(t *testing.T) {
	q := newOfflineQueue(2)
	q.push(msg("a"))
	q.push(msg("b"))
	q.push(msg("c"))

	out := q.drain()
	if len(out) != 2 {
		t.Fatalf("drained %d, want 2", len(out))
	}
	if out[0].topic != "b" || out[1].topic != "c" {
		t.Errorf("kept %q, %q; want b, c (oldest dropped)", out[0].topic, out[1].topic)
	}
}

func TestOfflineQueueDrainEmpty(t *testing.T) {
	q := newOfflineQueue(2)
	if out := q.drain(); out != nil {
		t.Errorf("drain of empty queue = %v, want nil", out)
	}
}

func TestOfflineQueueReusableAfterDrain(t *testing.T) {
	q := newOfflineQueue(2)
	q.push(msg("a"))
	q.drain()
	q.push(msg("b"))
	out := q.drain()
	if len(out) != 1 || out[0].topic != "b" {
		t.Errorf("after reuse got %+v", out)
	}
}
