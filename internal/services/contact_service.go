package services

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/terraincognita07/stillhere/internal/models"
)

var (
	ErrContactInputInvalid = errors.New("contact input invalid")
	ErrContactNotFound     = errors.New("contact not found")
	ErrContactSaveFailed   = errors.New("save contact failed")
	ErrContactLoadFailed   = errors.New("load contacts failed")
)

type ContactStore interface {
	Create(contact *models.EmergencyContact) error
	ListByUser(userID uint) ([]models.EmergencyContact, error)
	DeleteByUserAndID(userID uint, contactID uint) (bool, error)
}

type ContactService struct {
	contacts ContactStore
}

func NewContactService(contacts ContactStore) *ContactService {
	return &ContactService{contacts: contacts}
}

// NormalizeContactInput trims and validates a contact before any write.
// The email is checked for shape only; there is deliberately no
// uniqueness requirement, the same address may watch over several users.
func NormalizeContactInput(nameRaw string, emailRaw string) (string, string, error) {
	name := strings.TrimSpace(nameRaw)
	email := strings.TrimSpace(emailRaw)
	if name == "" || email == "" {
		return "", "", ErrContactInputInvalid
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", "", ErrContactInputInvalid
	}
	return name, email, nil
}

func (service *ContactService) AddContact(userID uint, nameRaw string, emailRaw string, now time.Time) (models.EmergencyContact, error) {
	name, email, err := NormalizeContactInput(nameRaw, emailRaw)
	if err != nil {
		return models.EmergencyContact{}, err
	}

	contact := models.EmergencyContact{
		UserID:    userID,
		Name:      name,
		Email:     email,
		CreatedAt: now,
	}
	if err := service.contacts.Create(&contact); err != nil {
		return models.EmergencyContact{}, ErrContactSaveFailed
	}
	return contact, nil
}

func (service *ContactService) ListContacts(userID uint) ([]models.EmergencyContact, error) {
	contacts, err := service.contacts.ListByUser(userID)
	if err != nil {
		return nil, ErrContactLoadFailed
	}
	return contacts, nil
}

func (service *ContactService) RemoveContact(userID uint, contactID uint) error {
	deleted, err := service.contacts.DeleteByUserAndID(userID, contactID)
	if err != nil {
		return ErrContactSaveFailed
	}
	if !deleted {
		return ErrContactNotFound
	}
	return nil
}
