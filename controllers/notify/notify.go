// Package notifyControllers fires best-effort buyer and seller receipt
// emails after an order is created and records per-recipient delivery
// status. Order existence is independent of notification success.
package notifyControllers

import (
	"errors"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gorm.io/gorm"

	"github.com/nxough-jxhn/daingGraderWeb-sub002/models"
)

type Sender interface {
	Send(to, subject, html string) error
}

type UserDirectory interface {
	Lookup(userID string) (name, email string, err error)
}

type RecordSaver interface {
	Save(record *models.NotificationRecord) error
}

// SendGridSender sends receipt emails through the SendGrid API.
type SendGridSender struct {
	APIKey   string
	From     string
	FromName string
}

func (s *SendGridSender) Send(to, subject, html string) error {
	if s.APIKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if to == "" {
		return fmt.Errorf("recipient address is empty")
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(s.FromName, s.From),
		subject,
		mail.NewEmail("", to),
		"Your DaingGrader receipt is attached in this email.",
		html,
	)

	response, err := sendgrid.NewSendClient(s.APIKey).Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", response.StatusCode, response.Body)
	}
	return nil
}

// GormDirectory resolves user ids to names and addresses.
type GormDirectory struct {
	DB *gorm.DB
}

func (d *GormDirectory) Lookup(userID string) (string, string, error) {
	var user models.User
	if err := d.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", fmt.Errorf("user %s not found", userID)
		}
		return "", "", err
	}
	return user.Name, user.Email, nil
}

// GormRecords persists notification records.
type GormRecords struct {
	DB *gorm.DB
}

func (r *GormRecords) Save(record *models.NotificationRecord) error {
	return r.DB.Create(record).Error
}

// Tracker attempts buyer and seller delivery independently; every failure
// is recorded but never raised to the caller.
type Tracker struct {
	Sender  Sender
	Users   UserDirectory
	Records RecordSaver
}

func NewTracker(db *gorm.DB, sender Sender) *Tracker {
	return &Tracker{
		Sender:  sender,
		Users:   &GormDirectory{DB: db},
		Records: &GormRecords{DB: db},
	}
}

func (t *Tracker) Notify(order *models.Order) *models.NotificationRecord {
	record := &models.NotificationRecord{OrderID: order.ID}

	if name, email, err := t.Users.Lookup(order.BuyerID); err != nil {
		record.BuyerError = err.Error()
	} else if err := t.Sender.Send(email, "Your DaingGrader receipt — "+order.OrderNumber, buildReceiptHTML(order, name)); err != nil {
		record.BuyerError = err.Error()
	} else {
		record.BuyerSent = true
	}

	if name, email, err := t.Users.Lookup(order.SellerID); err != nil {
		record.SellerError = err.Error()
	} else if err := t.Sender.Send(email, "New order received — "+order.OrderNumber, buildSellerNoticeHTML(order, name)); err != nil {
		record.SellerError = err.Error()
	} else {
		record.SellerSent = true
	}

	if err := t.Records.Save(record); err != nil {
		log.Printf("notify: failed to save record for order %d: %v", order.ID, err)
	}
	if record.BuyerError != "" {
		log.Printf("notify: buyer receipt for order %s failed: %s", order.OrderNumber, record.BuyerError)
	}
	if record.SellerError != "" {
		log.Printf("notify: seller notice for order %s failed: %s", order.OrderNumber, record.SellerError)
	}

	return record
}
