package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTuning(t *testing.T) {
	d := DefaultTuning()

	assert.Equal(t, 128, d.MaxMessageLength)
	assert.Equal(t, 12, d.Threshold)
	assert.Equal(t, 3000, d.Limit)
	assert.Equal(t, 0.05, d.Probability)
	assert.Equal(t, 1, d.ImportanceWeekly)
	assert.Equal(t, 5, d.ImportanceMonthly)
	assert.Equal(t, 15, d.WeightLimit)
	assert.Equal(t, 10, d.RandomFrom)
	assert.Equal(t, 16, d.RandomTo)
	assert.Equal(t, 10*time.Second, d.ReplyDelayMin)
	assert.Equal(t, 30*time.Second, d.ReplyDelayMax)
	assert.Equal(t, DefaultBlackList, d.BlackList)
	require.NoError(t, d.Validate())
}

func TestCloneDetachesBlacklist(t *testing.T) {
	d := DefaultTuning()
	c := d.Clone()
	c.BlackList[0] = "changed"
	assert.NotEqual(t, "changed", d.BlackList[0])
}

func TestValidate(t *testing.T) {
	tests := map[string]func(*Tuning){
		"zero max length":     func(t *Tuning) { t.MaxMessageLength = 0 },
		"negative threshold":  func(t *Tuning) { t.Threshold = -1 },
		"zero limit":          func(t *Tuning) { t.Limit = 0 },
		"probability above 1": func(t *Tuning) { t.Probability = 1.5 },
		"zero weight limit":   func(t *Tuning) { t.WeightLimit = 0 },
		"inverted random":     func(t *Tuning) { t.RandomFrom, t.RandomTo = 5, 4 },
		"inverted delay":      func(t *Tuning) { t.ReplyDelayMin, t.ReplyDelayMax = time.Minute, time.Second },
		"bad extract regex":   func(t *Tuning) { t.ExtractRegex = "[" },
		"bad blacklist":       func(t *Tuning) { t.BlackList = []string{"("} },
		"empty blacklist":     func(t *Tuning) { t.BlackList = []string{""} },
		"unanchorable":        func(t *Tuning) { t.BlackList = []string{"(?x)spam # no ads"} },
		"random overflow":     func(t *Tuning) { t.RandomFrom, t.RandomTo = 1, 3_000_000 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			tun := DefaultTuning()
			mutate(&tun)
			assert.Error(t, tun.Validate())
		})
	}
}

func TestValidateRandomHoursBound(t *testing.T) {
	tun := DefaultTuning()
	tun.RandomFrom, tun.RandomTo = 1, int(MaxRandomHours)
	assert.NoError(t, tun.Validate())

	tun.RandomTo++
	assert.Error(t, tun.Validate())
}
