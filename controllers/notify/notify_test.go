package notifyControllers

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nxough-jxhn/daingGraderWeb-sub002/models"
)

type fakeSender struct {
	failFor map[string]error
	sent    []string // recipients in order
}

func (f *fakeSender) Send(to, subject, html string) error {
	if err, ok := f.failFor[to]; ok {
		return err
	}
	f.sent = append(f.sent, to)
	return nil
}

type fakeDirectory map[string][2]string // id -> {name, email}

func (f fakeDirectory) Lookup(userID string) (string, string, error) {
	entry, ok := f[userID]
	if !ok {
		return "", "", errors.New("user " + userID + " not found")
	}
	return entry[0], entry[1], nil
}

type fakeRecords struct {
	saved []*models.NotificationRecord
}

func (f *fakeRecords) Save(record *models.NotificationRecord) error {
	f.saved = append(f.saved, record)
	return nil
}

func testOrder() *models.Order {
	return &models.Order{
		ID:          7,
		OrderNumber: "ORD-260830-AB12CD",
		BuyerID:     "buyer-1",
		SellerID:    "seller-1",
		TotalAmount: 500,
		Status:      models.OrderStatusConfirmed,
		Items: []models.OrderItem{
			{ProductName: "Daing na Bangus", UnitPrice: 250, Quantity: 2},
		},
		PaymentMethod: "cod",
		CreatedAt:     time.Now(),
	}
}

func newTestTracker(sender *fakeSender, records *fakeRecords) *Tracker {
	return &Tracker{
		Sender: sender,
		Users: fakeDirectory{
			"buyer-1":  {"Juan dela Cruz", "juan@example.com"},
			"seller-1": {"Aling Nena", "nena@example.com"},
		},
		Records: records,
	}
}

func TestNotifyBothDelivered(t *testing.T) {
	sender := &fakeSender{}
	records := &fakeRecords{}

	record := newTestTracker(sender, records).Notify(testOrder())

	assert.True(t, record.BuyerSent)
	assert.True(t, record.SellerSent)
	assert.Empty(t, record.BuyerError)
	assert.Empty(t, record.SellerError)
	assert.Equal(t, []string{"juan@example.com", "nena@example.com"}, sender.sent)
	require.Len(t, records.saved, 1)
}

func TestNotifyBuyerFailureDoesNotAffectSellerOrOrder(t *testing.T) {
	sender := &fakeSender{failFor: map[string]error{
		"juan@example.com": errors.New("smtp timeout"),
	}}
	records := &fakeRecords{}
	order := testOrder()

	record := newTestTracker(sender, records).Notify(order)

	assert.False(t, record.BuyerSent)
	assert.Equal(t, "smtp timeout", record.BuyerError)
	assert.True(t, record.SellerSent, "seller delivery is attempted independently")

	// The failure is recorded, never raised: the order is untouched.
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	require.Len(t, records.saved, 1)
	assert.Equal(t, order.ID, records.saved[0].OrderID)
}

func TestNotifyUnknownSellerRecorded(t *testing.T) {
	sender := &fakeSender{}
	records := &fakeRecords{}
	tracker := &Tracker{
		Sender:  sender,
		Users:   fakeDirectory{"buyer-1": {"Juan dela Cruz", "juan@example.com"}},
		Records: records,
	}

	record := tracker.Notify(testOrder())

	assert.True(t, record.BuyerSent)
	assert.False(t, record.SellerSent)
	assert.Contains(t, record.SellerError, "not found")
}

func TestReceiptHTMLContainsOrderDetails(t *testing.T) {
	order := testOrder()
	html := buildReceiptHTML(order, "Juan dela Cruz")

	assert.Contains(t, html, "ORD-260830-AB12CD")
	assert.Contains(t, html, "Daing na Bangus")
	assert.Contains(t, html, "PHP 500.00")
	assert.Contains(t, html, "Juan dela Cruz")
}
