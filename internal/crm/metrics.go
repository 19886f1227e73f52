package crm

import (
	"math"
	"sort"
	"time"

	"github.com/starford/crmai/internal/models"
)

// StageStat is one pipeline column.
type StageStat struct {
	Stage   models.Stage `json:"stage"`
	Count   int          `json:"count"`
	Revenue float64      `json:"revenue"`
}

// Billing is an upcoming subscription charge.
type Billing struct {
	Subscription models.Subscription `json:"subscription"`
	DaysUntil    int                 `json:"daysUntil"`
}

// Recurring summarizes subscription revenue.
type Recurring struct {
	MRR             float64 `json:"mrr"`
	ARR             float64 `json:"arr"`
	AverageContract float64 `json:"averageContract"`
	Active          int     `json:"active"`
}

// Metrics is the dashboard view of the store.
type Metrics struct {
	Invoices       models.InvoiceTotals `json:"invoices"`
	Recurring      Recurring            `json:"recurring"`
	Pipeline       []StageStat          `json:"pipeline"`
	PipelineValue  float64              `json:"pipelineValue"`
	WonRevenue     float64              `json:"wonRevenue"`
	ConversionRate int                  `json:"conversionRate"`
	OpenTasks      int                  `json:"openTasks"`
	HighPriority   int                  `json:"highPriority"`
	Upcoming       []Billing            `json:"upcoming"`
}

// UpcomingWindow is how far ahead UpcomingBillings looks by default.
const UpcomingWindow = 30 * 24 * time.Hour

// InvoiceTotals sums paid, overdue and pending amounts.
func (s *Store) InvoiceTotals() models.InvoiceTotals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Totals(s.state.Invoices)
}

// Recurring computes MRR over active subscriptions, ARR = 12 × MRR and the
// rounded average monthly value per active contract.
func (s *Store) Recurring() Recurring {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return recurringOf(s.state.Subscriptions)
}

func recurringOf(subs []models.Subscription) Recurring {
	var r Recurring
	for _, sub := range subs {
		if sub.Status != models.SubscriptionActive {
			continue
		}
		r.MRR += sub.MonthlyValue()
		r.Active++
	}
	r.ARR = r.MRR * 12
	if r.Active > 0 {
		r.AverageContract = math.Round(r.MRR / float64(r.Active))
	}
	return r
}

// UpcomingBillings lists active subscriptions billed between now and
// now+within, soonest first.
func (s *Store) UpcomingBillings(now time.Time, within time.Duration) []Billing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return upcomingOf(s.state.Subscriptions, now, within)
}

func upcomingOf(subs []models.Subscription, now time.Time, within time.Duration) []Billing {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	out := []Billing{}
	for _, sub := range subs {
		if sub.Status != models.SubscriptionActive {
			continue
		}
		next, ok := sub.NextBillingDate.Time()
		if !ok {
			continue
		}
		diff := next.Sub(today)
		if diff < 0 || diff > within {
			continue
		}
		out = append(out, Billing{Subscription: sub, DaysUntil: int(diff.Hours() / 24)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Subscription.NextBillingDate < out[j].Subscription.NextBillingDate
	})
	return out
}

// Pipeline counts contacts and sums their potential revenue per stage, in
// board order.
func (s *Store) Pipeline() []StageStat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pipelineOf(s.state.Contacts)
}

func pipelineOf(contacts []models.Contact) []StageStat {
	stats := make([]StageStat, len(models.Stages))
	pos := make(map[models.Stage]int, len(models.Stages))
	for i, st := range models.Stages {
		stats[i].Stage = st
		pos[st] = i
	}
	for _, c := range contacts {
		if i, ok := pos[c.Stage]; ok {
			stats[i].Count++
			stats[i].Revenue += c.Revenue
		}
	}
	return stats
}

// Metrics gathers every dashboard figure from one consistent read.
func (s *Store) Metrics() Metrics {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := Metrics{
		Invoices:  models.Totals(s.state.Invoices),
		Recurring: recurringOf(s.state.Subscriptions),
		Pipeline:  pipelineOf(s.state.Contacts),
		Upcoming:  upcomingOf(s.state.Subscriptions, now, UpcomingWindow),
	}
	var won, active int
	for _, st := range m.Pipeline {
		switch st.Stage {
		case models.StageWon:
			won = st.Count
			m.WonRevenue = st.Revenue
			active += st.Count
		case models.StageLost:
		default:
			m.PipelineValue += st.Revenue
			active += st.Count
		}
	}
	if active > 0 {
		m.ConversionRate = int(math.Round(float64(won) / float64(active) * 100))
	}
	for _, t := range s.state.Tasks {
		if t.Done {
			continue
		}
		m.OpenTasks++
		if t.Priority == models.PriorityHigh {
			m.HighPriority++
		}
	}
	return m
}

// WinRate is how many quotes in a group were sent and how many were won.
type WinRate struct {
	Label string `json:"label"`
	Sent  int    `json:"sent"`
	Won   int    `json:"won"`
	Rate  int    `json:"rate"`
}

// MonthRevenue is paid revenue for one calendar month.
type MonthRevenue struct {
	Month   time.Month `json:"month"`
	Label   string     `json:"label"`
	Revenue float64    `json:"revenue"`
	Count   int        `json:"count"`
}

// Insights are the sales analytics of the store. Rates are whole percents.
type Insights struct {
	Year           int            `json:"year"`
	Contacts       int            `json:"contacts"`
	Won            int            `json:"won"`
	Lost           int            `json:"lost"`
	ConversionRate int            `json:"conversionRate"`
	AverageDeal    float64        `json:"averageDeal"`
	DaysToClose    int            `json:"daysToClose"`
	ByWeekday      []WinRate      `json:"byWeekday"`
	ByPrice        []WinRate      `json:"byPrice"`
	RevenueByMonth []MonthRevenue `json:"revenueByMonth"`
}

// BestWeekday is the weekday with the highest quote win rate.
func (in Insights) BestWeekday() (WinRate, bool) {
	if len(in.ByWeekday) == 0 {
		return WinRate{}, false
	}
	return in.ByWeekday[0], true
}

var (
	weekdayLabels = [...]string{"Dimanche", "Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi"}
	monthLabels   = [...]string{"Jan", "Fév", "Mar", "Avr", "Mai", "Jun", "Jul", "Aoû", "Sep", "Oct", "Nov", "Déc"}
)

type priceBracket struct {
	label    string
	min, max float64
}

var priceBrackets = []priceBracket{
	{"< 1k€", 0, 1000},
	{"1–3k€", 1000, 3000},
	{"3–5k€", 3000, 5000},
	{"5–10k€", 5000, 10000},
	{"> 10k€", 10000, math.Inf(1)},
}

// Insights computes conversion, deal size, closing time, quote win rates by
// weekday and price bracket, and paid revenue per month of year. A quote
// counts as won when its contact is in the Gagné stage.
func (s *Store) Insights(year int) Insights {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return insightsOf(s.state.Contacts, s.state.Invoices, year)
}

func insightsOf(contacts []models.Contact, invoices []models.Invoice, year int) Insights {
	in := Insights{Year: year, Contacts: len(contacts)}

	won := make(map[string]bool)
	var closeDays float64
	var closed int
	for _, c := range contacts {
		switch c.Stage {
		case models.StageWon:
			in.Won++
			won[c.ID] = true
			created, ok1 := c.CreatedAt.Time()
			last, ok2 := c.LastContact.Time()
			if ok1 && ok2 {
				closeDays += last.Sub(created).Hours() / 24
				closed++
			}
		case models.StageLost:
			in.Lost++
		}
	}
	in.ConversionRate = percent(in.Won, in.Contacts)
	if closed > 0 {
		in.DaysToClose = int(math.Round(closeDays / float64(closed)))
	}

	days := make([]WinRate, len(weekdayLabels))
	for i := range days {
		days[i].Label = weekdayLabels[i]
	}
	prices := make([]WinRate, len(priceBrackets))
	for i := range prices {
		prices[i].Label = priceBrackets[i].label
	}
	months := make([]MonthRevenue, 12)
	var paid float64
	var paidCount int

	for _, inv := range invoices {
		switch inv.Type {
		case models.InvoiceTypeQuote:
			w := won[inv.ContactID]
			if d, ok := inv.Date.Time(); ok {
				tally(&days[d.Weekday()], w)
			}
			for i, b := range priceBrackets {
				if inv.Amount >= b.min && inv.Amount < b.max {
					tally(&prices[i], w)
					break
				}
			}
		case models.InvoiceTypeInvoice:
			if inv.Status != models.InvoiceStatusPaid {
				continue
			}
			paid += inv.Amount
			paidCount++
			if d, ok := inv.Date.Time(); ok && d.Year() == year {
				months[d.Month()-1].Revenue += inv.Amount
				months[d.Month()-1].Count++
			}
		}
	}
	if paidCount > 0 {
		in.AverageDeal = math.Round(paid / float64(paidCount))
	}

	in.ByWeekday = sentOnly(days)
	sort.SliceStable(in.ByWeekday, func(i, j int) bool { return in.ByWeekday[i].Rate > in.ByWeekday[j].Rate })
	in.ByPrice = sentOnly(prices)

	in.RevenueByMonth = []MonthRevenue{}
	for i, m := range months {
		if m.Revenue > 0 {
			m.Month = time.Month(i + 1)
			m.Label = monthLabels[i]
			in.RevenueByMonth = append(in.RevenueByMonth, m)
		}
	}
	return in
}

func tally(r *WinRate, won bool) {
	r.Sent++
	if won {
		r.Won++
	}
}

func sentOnly(rates []WinRate) []WinRate {
	out := []WinRate{}
	for _, r := range rates {
		if r.Sent > 0 {
			r.Rate = percent(r.Won, r.Sent)
			out = append(out, r)
		}
	}
	return out
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}
