package lols

import (
	"testing"
)

func TestTiedRandomness(t *testing.T) {
	var calls int
	rng := func() float64 {
		calls++
		return float64(calls) / 10
	}
	tied := NewTiedRandomness(rng)

	first := tied.Draw(3)
	if again := tied.Draw(3); again != first {
		t.Errorf("draw: want(%v) have(%v) on repeated draw", first, again)
	}
	if calls != 1 {
		t.Errorf("draw: want(1) draws have(%v)", calls)
	}

	if other := tied.Draw(4); other == first {
		t.Errorf("draw: expected a new draw for a new timestep")
	}
	if calls != 2 {
		t.Errorf("draw: want(2) draws have(%v)", calls)
	}

	tied.Reset()
	if redrawn := tied.Draw(3); redrawn == first {
		t.Errorf("reset: expected a new draw after reset")
	}
	if calls != 3 {
		t.Errorf("reset: want(3) draws have(%v)", calls)
	}
}

func TestOneStepDeviation(t *testing.T) {
	strategy := OneStepDeviation(Always(FollowRef()),
		Always(FollowLearned()), 2, 5)

	want := []Choice{FollowRef(), FollowRef(), ActOn(5), FollowLearned(),
		FollowLearned()}
	for step, w := range want {
		if have := strategy(step); have != w {
			t.Errorf("oneStepDeviation: timestep %v want(%v) have(%v)", step,
				w, have)
		}
	}
}

func TestReplay(t *testing.T) {
	strategy := OneStepDeviation(Replay([]int{4, 1, 3}),
		Always(FollowRef()), 1, 0)

	want := []Choice{ActOn(4), ActOn(0), FollowRef()}
	for step, w := range want {
		if have := strategy(step); have != w {
			t.Errorf("replay: timestep %v want(%v) have(%v)", step, w, have)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("validate: expected default config to be valid, got %v",
			err)
	}

	for name, modify := range map[string]func(c *Config){
		"mixture":     func(c *Config) { c.Mixture = "PerEpisode" },
		"learning":    func(c *Config) { c.LearningMethod = "MTR" },
		"exploration": func(c *Config) { c.Exploration = "Greedy" },
		"epsilon":     func(c *Config) { c.Epsilon = 1.5 },
		"rollin":      func(c *Config) { c.PRollinRef = -0.1 },
		"rollout":     func(c *Config) { c.PRolloutRef = 2 },
	} {
		c := DefaultConfig()
		modify(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("validate: expected error on invalid %v", name)
		}
	}
}

func TestEWMA(t *testing.T) {
	b := NewEWMA(0.5, 0)
	for _, loss := range []float64{2, 2} {
		b.Update(loss)
	}
	if b.Value() != 1.5 {
		t.Errorf("update: want(1.5) have(%v)", b.Value())
	}
}
