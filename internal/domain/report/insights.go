package report

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Groups smaller than this are ignored when picking best and worst segments.
const minInsightGroup = 10

// narrator formats findings. Printers and casers are stateful, so one is
// built per call.
type narrator struct {
	p     *message.Printer
	title cases.Caser
}

// Insights turns a report into short narrative findings. An empty report has
// none.
func Insights(r Report) []string {
	if r.Overview.Contacts == 0 {
		return nil
	}
	n := narrator{p: message.NewPrinter(language.English), title: cases.Title(language.English)}
	out := []string{
		n.p.Sprintf("%d clients were contacted and %d subscribed, a conversion rate of %s.",
			r.Overview.Contacts, r.Overview.Subscribed, n.percent(r.Overview.Rate)),
	}

	if best, worst, ok := extremes(r.ByJob); ok {
		out = append(out, n.p.Sprintf("%s is the most receptive job (%s); %s converts least (%s).",
			n.label(best.Key), n.percent(best.Rate), n.label(worst.Key), n.percent(worst.Rate)))
	}
	if best, _, ok := extremes(r.ByMonth); ok {
		out = append(out, n.p.Sprintf("Campaigns in %s convert best at %s over %d contacts.",
			n.label(best.Key), n.percent(best.Rate), best.Contacts))
	}
	if best, _, ok := extremes(r.ByAgeGroup); ok {
		out = append(out, n.p.Sprintf("The %s age group is the most responsive (%s).",
			best.Key, n.percent(best.Rate)))
	}
	if s, ok := n.fatigue(r.ByContactCount); ok {
		out = append(out, s)
	}
	return out
}

// extremes returns the highest and lowest rate groups among those large
// enough to be meaningful. Ties keep the first group in input order.
func extremes(groups []Group) (best, worst Group, ok bool) {
	for _, g := range groups {
		if g.Contacts < minInsightGroup {
			continue
		}
		if !ok {
			best, worst, ok = g, g, true
			continue
		}
		if g.Rate > best.Rate {
			best = g
		}
		if g.Rate < worst.Rate {
			worst = g
		}
	}
	return best, worst, ok
}

// fatigue compares first-call conversion with the most repeated bucket.
func (n narrator) fatigue(groups []Group) (string, bool) {
	var first, last *Group
	for i := range groups {
		if groups[i].Contacts < minInsightGroup {
			continue
		}
		if first == nil {
			first = &groups[i]
		}
		last = &groups[i]
	}
	if first == nil || last == first || first.Rate <= last.Rate {
		return "", false
	}
	return n.p.Sprintf("Conversion drops from %s at %s call(s) to %s at %s calls: repeated contacts show fatigue.",
		n.percent(first.Rate), first.Key, n.percent(last.Rate), last.Key), true
}

func (n narrator) percent(rate float64) string {
	return n.p.Sprintf("%.1f%%", rate*100)
}

func (n narrator) label(key string) string {
	return n.title.String(strings.TrimSuffix(key, "."))
}
