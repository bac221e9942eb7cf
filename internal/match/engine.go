// Package match scores deep profiles against each other: serendipity
// between two people, opportunities for the user, and cross-connections
// across a contact list.
package match

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/vocab"
)

// Fallback used when no dimension fires.
const (
	DimensionSameCity = "SAME_CITY"
	sameCityStrength  = 20
)

// Hit is one match a dimension found. Bonus is added to the dimension's
// base strength and may be negative.
type Hit struct {
	Bonus  int
	Detail string
	Hook   string
}

// MatchFunc finds the hits of one dimension. It must not depend on argument
// order beyond the order of the returned hits.
type MatchFunc func(a, b *models.DeepProfile) []Hit

// Dimension is a named way two people can be connected.
type Dimension struct {
	Name     string
	Strength int
	Match    MatchFunc
}

// Engine scores pairs of deep profiles. Register dimensions before sharing
// an engine between goroutines.
type Engine struct {
	vocab *vocab.Vocabulary
	now   func() time.Time
	dims  []Dimension
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used to close open-ended date ranges.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithoutDefaults starts the engine with no registered dimensions.
func WithoutDefaults() Option {
	return func(e *Engine) { e.dims = nil }
}

// NewEngine creates an engine with the default dimension table.
func NewEngine(v *vocab.Vocabulary, opts ...Option) *Engine {
	if v == nil {
		v = vocab.Default()
	}
	e := &Engine{vocab: v, now: time.Now}
	e.dims = DefaultDimensions(v, e.currentYear)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register appends a dimension to the table.
func (e *Engine) Register(d Dimension) {
	e.dims = append(e.dims, d)
}

// Dimensions returns the registered dimension names in evaluation order.
func (e *Engine) Dimensions() []string {
	names := make([]string, 0, len(e.dims))
	for _, d := range e.dims {
		names = append(names, d.Name)
	}
	return names
}

func (e *Engine) currentYear() int {
	return e.now().Year()
}

// FindSerendipity scores how two people could be connected.
func (e *Engine) FindSerendipity(a, b *models.DeepProfile) models.MatchResult {
	conns := []models.Connection{}
	for _, d := range e.dims {
		for _, h := range d.Match(a, b) {
			conns = append(conns, models.Connection{
				Dimension: d.Name,
				Strength:  clamp(d.Strength+h.Bonus, 0, 100),
				Detail:    h.Detail,
				HookLine:  h.Hook,
			})
		}
	}

	if len(conns) == 0 {
		if c, ok := e.sameCity(a, b); ok {
			conns = append(conns, c)
		}
	}

	sort.SliceStable(conns, func(i, j int) bool {
		return conns[i].Strength > conns[j].Strength
	})

	res := models.MatchResult{
		ProfileA:         a.ID,
		ProfileB:         b.ID,
		Connections:      conns,
		SerendipityScore: Aggregate(conns),
		VerificationA:    Verification(a),
		VerificationB:    Verification(b),
	}
	avgVer := float64(res.VerificationA+res.VerificationB) / 2
	res.ConfidenceScore = int(math.Round(float64(res.SerendipityScore) * avgVer / 100))
	if len(conns) > 0 {
		res.BestHook = conns[0].HookLine
		res.IntroMessage = introMessage(a, b, conns[0])
	}
	return res
}

func (e *Engine) sameCity(a, b *models.DeepProfile) (models.Connection, bool) {
	ca := e.vocab.NormalizeCity(a.Current.Location)
	cb := e.vocab.NormalizeCity(b.Current.Location)
	if ca == "" || !strings.EqualFold(ca, cb) {
		return models.Connection{}, false
	}
	return models.Connection{
		Dimension: DimensionSameCity,
		Strength:  sameCityStrength,
		Detail:    "Both based in " + ca,
		HookLine:  "You're both in " + ca + ".",
	}, true
}

// Aggregate combines connection strengths into a 0-100 score: the mean of
// the top three, plus bonuses for connection count and dimension variety.
func Aggregate(conns []models.Connection) int {
	if len(conns) == 0 {
		return 0
	}

	strengths := make([]int, 0, len(conns))
	unique := make(map[string]bool)
	for _, c := range conns {
		strengths = append(strengths, c.Strength)
		unique[c.Dimension] = true
	}
	sort.Sort(sort.Reverse(sort.IntSlice(strengths)))

	top := strengths
	if len(top) > 3 {
		top = top[:3]
	}
	sum := 0
	for _, s := range top {
		sum += s
	}

	score := float64(sum)/float64(len(top)) +
		math.Min(float64(5*len(conns)), 20) +
		math.Min(float64(3*len(unique)), 15)
	return int(math.Round(math.Min(score, 100)))
}

func introMessage(a, b *models.DeepProfile, best models.Connection) string {
	return fmt.Sprintf("%s, meet %s. %s %s",
		firstName(a.Name), firstName(b.Name), best.Detail+".", best.HookLine)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
