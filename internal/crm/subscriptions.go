package crm

import (
	"strings"

	"github.com/starford/crmai/internal/idgen"
	"github.com/starford/crmai/internal/models"
)

// SubscriptionInput carries the fields of a new recurring contract.
type SubscriptionInput struct {
	ContactID       string                    `json:"contactId"`
	Name            string                    `json:"name"`
	Amount          float64                   `json:"amount"`
	Frequency       models.Frequency          `json:"frequency"`
	StartDate       models.Date               `json:"startDate"`
	NextBillingDate models.Date               `json:"nextBillingDate"`
	Status          models.SubscriptionStatus `json:"status"`
	Notes           string                    `json:"notes"`
}

// SubscriptionPatch lists the fields to overwrite; nil means unchanged.
type SubscriptionPatch struct {
	ContactID       *string                    `json:"contactId,omitempty"`
	Name            *string                    `json:"name,omitempty"`
	Amount          *float64                   `json:"amount,omitempty"`
	Frequency       *models.Frequency          `json:"frequency,omitempty"`
	StartDate       *models.Date               `json:"startDate,omitempty"`
	NextBillingDate *models.Date               `json:"nextBillingDate,omitempty"`
	Status          *models.SubscriptionStatus `json:"status,omitempty"`
	Notes           *string                    `json:"notes,omitempty"`
}

func subscriptionID(s *models.Subscription) string { return s.ID }

// AddSubscription appends a new contract, active and monthly unless told otherwise.
func (s *Store) AddSubscription(in SubscriptionInput) (models.Subscription, error) {
	sub := models.Subscription{
		ID:              idgen.NewAt(idgen.KindSubscription, s.now()),
		ContactID:       in.ContactID,
		Name:            strings.TrimSpace(in.Name),
		Amount:          in.Amount,
		Frequency:       orDefault(in.Frequency, models.FrequencyMonthly),
		StartDate:       orDefault(in.StartDate, s.today()),
		NextBillingDate: in.NextBillingDate,
		Status:          orDefault(in.Status, models.SubscriptionActive),
		Notes:           in.Notes,
	}
	if err := sub.Validate(); err != nil {
		return models.Subscription{}, err
	}
	_, err := s.mutate(KindSubscription, ActionCreated, func() (string, bool, error) {
		s.state.Subscriptions = append(s.state.Subscriptions, sub)
		return sub.ID, true, nil
	})
	return sub, err
}

// UpdateSubscription shallow-merges patch into the subscription.
func (s *Store) UpdateSubscription(id string, patch SubscriptionPatch) (bool, error) {
	return s.mutate(KindSubscription, ActionUpdated, func() (string, bool, error) {
		i := indexOf(s.state.Subscriptions, id, subscriptionID)
		if i < 0 {
			return id, false, nil
		}
		next := s.state.Subscriptions[i]
		setIf(&next.ContactID, patch.ContactID)
		setIf(&next.Name, patch.Name)
		setIf(&next.Amount, patch.Amount)
		setIf(&next.Frequency, patch.Frequency)
		setIf(&next.StartDate, patch.StartDate)
		setIf(&next.NextBillingDate, patch.NextBillingDate)
		setIf(&next.Status, patch.Status)
		setIf(&next.Notes, patch.Notes)
		if err := next.Validate(); err != nil {
			return id, false, err
		}
		s.state.Subscriptions[i] = next
		return id, true, nil
	})
}

// ToggleSubscription pauses an active subscription and reactivates any other.
func (s *Store) ToggleSubscription(id string) (bool, error) {
	return s.mutate(KindSubscription, ActionUpdated, func() (string, bool, error) {
		i := indexOf(s.state.Subscriptions, id, subscriptionID)
		if i < 0 {
			return id, false, nil
		}
		sub := &s.state.Subscriptions[i]
		if sub.Status == models.SubscriptionActive {
			sub.Status = models.SubscriptionPaused
		} else {
			sub.Status = models.SubscriptionActive
		}
		return id, true, nil
	})
}

// DeleteSubscription removes the subscription.
func (s *Store) DeleteSubscription(id string) (bool, error) {
	return s.mutate(KindSubscription, ActionDeleted, func() (string, bool, error) {
		return id, deleteAt(&s.state.Subscriptions, id, subscriptionID), nil
	})
}

// ListSubscriptions returns all subscriptions in insertion order.
func (s *Store) ListSubscriptions() []models.Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.state.Subscriptions, nil)
}
