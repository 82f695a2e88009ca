package config

import (
	"fmt"
	"math"
	"time"

	"github.com/dlclark/regexp2"
)

// Tuning holds the reply and memory parameters. A *Tuning handed out by Settings is
// never mutated afterwards; changes produce a new value.
type Tuning struct {
	MaxMessageLength  int           `yaml:"max_message_length"`
	Threshold         int           `yaml:"threshold"`
	Limit             int           `yaml:"limit"`
	Probability       float64       `yaml:"probability"`
	ImportanceWeekly  int           `yaml:"importance_weekly"`
	ImportanceMonthly int           `yaml:"importance_monthly"`
	BlackList         []string      `yaml:"black_list"`
	ExtractRegex      string        `yaml:"extract_regex"`
	WeightLimit       int           `yaml:"weight_limit"`
	RandomFrom        int           `yaml:"random_from"` // hours
	RandomTo          int           `yaml:"random_to"`   // hours
	ReplyDelayMin     time.Duration `yaml:"reply_delay_min"`
	ReplyDelayMax     time.Duration `yaml:"reply_delay_max"`
}

// DefaultBlackList keeps bot commands, fortune/tarot spam and anything that looks like a link
// or a hashtag out of memory.
var DefaultBlackList = []string{
	"运势",
	".*/.*",
	`\.system`,
	".*#.*",
	"^点歌",
	"今日塔罗",
	"单向历",
	"^转卡片",
	"开始添加",
}

// MaxRandomHours is the longest spontaneous-message interval that still fits a time.Duration.
const MaxRandomHours = math.MaxInt64 / int64(time.Hour)

// DefaultTuning returns the stock parameters.
func DefaultTuning() Tuning {
	return Tuning{
		MaxMessageLength:  128,
		Threshold:         12,
		Limit:             3000,
		Probability:       0.05,
		ImportanceWeekly:  1,
		ImportanceMonthly: 5,
		BlackList:         append([]string(nil), DefaultBlackList...),
		ExtractRegex:      `[\s,。#.=/+!;:()\[\]{}"]+`,
		WeightLimit:       15,
		RandomFrom:        10,
		RandomTo:          16,
		ReplyDelayMin:     10 * time.Second,
		ReplyDelayMax:     30 * time.Second,
	}
}

// Clone returns a deep copy.
func (t Tuning) Clone() Tuning {
	t.BlackList = append([]string(nil), t.BlackList...)
	return t
}

// Validate rejects values the core cannot work with, including patterns that do not compile.
func (t Tuning) Validate() error {
	switch {
	case t.MaxMessageLength <= 0:
		return fmt.Errorf("max_message_length must be positive, got %d", t.MaxMessageLength)
	case t.Threshold < 0:
		return fmt.Errorf("threshold must not be negative, got %d", t.Threshold)
	case t.Limit < 1:
		return fmt.Errorf("limit must be at least 1, got %d", t.Limit)
	case t.Probability < 0 || t.Probability > 1:
		return fmt.Errorf("probability must be within [0,1], got %v", t.Probability)
	case t.WeightLimit < 1:
		return fmt.Errorf("weight_limit must be at least 1, got %d", t.WeightLimit)
	case t.RandomFrom < 1 || t.RandomTo < t.RandomFrom:
		return fmt.Errorf("random_from/random_to must satisfy 1 <= from <= to, got %d/%d", t.RandomFrom, t.RandomTo)
	case int64(t.RandomTo) > MaxRandomHours:
		return fmt.Errorf("random_to must be at most %d hours, got %d", MaxRandomHours, t.RandomTo)
	case t.ReplyDelayMin < 0 || t.ReplyDelayMax < t.ReplyDelayMin:
		return fmt.Errorf("reply delay window [%s,%s) is invalid", t.ReplyDelayMin, t.ReplyDelayMax)
	}

	if _, err := regexp2.Compile(t.ExtractRegex, regexp2.None); err != nil {
		return fmt.Errorf("extract_regex: %w", err)
	}
	for _, p := range t.BlackList {
		if err := ValidatePattern(p); err != nil {
			return err
		}
	}
	return nil
}

// AnchorPattern wraps a blacklist pattern so that it must match the whole message.
func AnchorPattern(p string) string {
	return `\A(?:` + p + `)\z`
}

// ValidatePattern reports whether p compiles as a blacklist pattern, in the anchored form
// the blacklist uses.
func ValidatePattern(p string) error {
	if p == "" {
		return fmt.Errorf("blacklist pattern is empty")
	}
	if _, err := regexp2.Compile(AnchorPattern(p), regexp2.None); err != nil {
		return fmt.Errorf("blacklist pattern %q: %w", p, err)
	}
	return nil
}
