package api

import (
	"net/http"
	"testing"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/Domenick1991/parcelbooking/internal/service/contact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestContactHandler_Submit(t *testing.T) {
	s := newTestServer(t)
	input := contact.SubmitInput{Name: "Ada", Phone: "08030000000", Subject: "Pricing", Message: "Do you deliver on Sundays?"}
	s.contact.On("Submit", mock.Anything, input).Return(&domain.ContactMessage{ID: 3, Status: domain.ContactStatusNew}, nil).Once()

	w := s.do(t, http.MethodPost, "/api/contact", input, false)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":3,"status":"new"}`, w.Body.String())
}

func TestContactHandler_Submit_Invalid(t *testing.T) {
	s := newTestServer(t)
	input := contact.SubmitInput{Name: "Ada", Phone: "x"}
	s.contact.On("Submit", mock.Anything, input).Return(nil, domain.ValidationError{Field: "phone", Msg: "must be a valid phone number"}).Once()

	w := s.do(t, http.MethodPost, "/api/contact", input, false)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "phone", decode[errorResponse](t, w).Field)
}

func TestContactHandler_AdminListAndStatus(t *testing.T) {
	s := newTestServer(t)
	s.contact.On("List", mock.Anything, domain.ContactStatusNew, 0, 0).Return([]domain.ContactMessage{{ID: 3}}, nil).Once()
	s.contact.On("SetStatus", mock.Anything, int64(3), domain.ContactStatusResolved).
		Return(&domain.ContactMessage{ID: 3, Status: domain.ContactStatusResolved}, nil).Once()

	w := s.do(t, http.MethodGet, "/api/admin/contact-messages?status=new", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.ContactMessage](t, w), 1)

	w = s.do(t, http.MethodPut, "/api/admin/contact-messages/3/status", contactStatusRequest{Status: "resolved"}, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.ContactStatusResolved, decode[domain.ContactMessage](t, w).Status)
}
