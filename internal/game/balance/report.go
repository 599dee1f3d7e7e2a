// Package balance simulates one throwaway character per class to a target
// level and summarizes how the classes compare.
package balance

import (
	"fmt"
	"io"
	"iter"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/cory-johannsen/rpgrules/internal/game/character"
	"github.com/cory-johannsen/rpgrules/internal/game/progression"
	"github.com/cory-johannsen/rpgrules/internal/game/stats"
)

// Simulator is the slice of the character facade the report needs.
type Simulator interface {
	Classes() iter.Seq[string]
	Create(name, classID string) (*character.Character, error)
	AddExperience(c *character.Character, amount int) (progression.Result, error)
	ExperienceFor(level int) int
	MaxLevel() int
}

// ClassStats is one class's simulated character at the report level.
type ClassStats struct {
	Class      string
	Stats      stats.Block
	Total      int
	MaxHealth  int
	Experience int
	// Saturated counts level-ups where the stat cap cut growth short.
	Saturated int
}

// Summary aggregates stat totals across classes.
type Summary struct {
	MeanTotal float64
	MinTotal  int
	MinClass  string
	MaxTotal  int
	MaxClass  string
	// Spread is MaxTotal - MinTotal.
	Spread int
}

// Report is the balance comparison at one level.
type Report struct {
	Level   int
	Classes []ClassStats
	Summary Summary
}

// Build simulates a fresh character of every class through the progression
// engine to level and reports the outcome. Live characters are never touched.
//
// Precondition: 1 <= level <= sim.MaxLevel().
// Postcondition: Classes is in class ID order; returns an error for an out-of-range level.
func Build(sim Simulator, level int) (Report, error) {
	if level < 1 || level > sim.MaxLevel() {
		return Report{}, fmt.Errorf("report level must be within [1, %d], got %d", sim.MaxLevel(), level)
	}
	rep := Report{Level: level}
	xp := sim.ExperienceFor(level)
	for classID := range sim.Classes() {
		c, err := sim.Create("balance-"+classID, classID)
		if err != nil {
			return Report{}, err
		}
		res, err := sim.AddExperience(c, xp)
		if err != nil {
			return Report{}, err
		}
		cs := ClassStats{
			Class:      classID,
			Stats:      c.Stats,
			Total:      c.Stats.Total(),
			MaxHealth:  c.MaxHealth,
			Experience: c.Experience,
		}
		for _, ev := range res.Events {
			if len(ev.Saturated) > 0 {
				cs.Saturated++
			}
		}
		rep.Classes = append(rep.Classes, cs)
	}
	rep.Summary = summarize(rep.Classes)
	return rep, nil
}

func summarize(classes []ClassStats) Summary {
	var s Summary
	if len(classes) == 0 {
		return s
	}
	sum := 0
	for i, cs := range classes {
		sum += cs.Total
		if i == 0 || cs.Total < s.MinTotal {
			s.MinTotal, s.MinClass = cs.Total, cs.Class
		}
		if i == 0 || cs.Total > s.MaxTotal {
			s.MaxTotal, s.MaxClass = cs.Total, cs.Class
		}
	}
	s.MeanTotal = float64(sum) / float64(len(classes))
	s.Spread = s.MaxTotal - s.MinTotal
	return s
}

// Render writes r as an aligned text table with numbers formatted for tag.
func Render(w io.Writer, r Report, tag language.Tag) error {
	p := message.NewPrinter(tag)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	p.Fprintf(tw, "class\t")
	for _, n := range stats.Names {
		p.Fprintf(tw, "%s\t", n.Short())
	}
	p.Fprintf(tw, "total\thp\txp\t\n")

	for _, cs := range r.Classes {
		p.Fprintf(tw, "%s\t", cs.Class)
		for _, n := range stats.Names {
			v, _ := cs.Stats.Get(n)
			p.Fprintf(tw, "%d\t", v)
		}
		p.Fprintf(tw, "%d\t%d\t%d\t\n", cs.Total, cs.MaxHealth, cs.Experience)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing balance table: %w", err)
	}

	s := r.Summary
	_, err := p.Fprintf(w, "level %d: mean total %.1f, min %d (%s), max %d (%s), spread %d\n",
		r.Level, s.MeanTotal, s.MinTotal, s.MinClass, s.MaxTotal, s.MaxClass, s.Spread)
	return err
}
