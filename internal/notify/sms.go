// Package notify sends templated SMS messages for booking events. Send
// failures are the caller's to log; they are never fatal and never roll
// anything back.
package notify

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

// Sender dispatches one SMS to a destination phone number.
type Sender interface {
	Send(to, body string) error
}

// TwilioSender sends SMS through the Twilio REST API.
type TwilioSender struct {
	client      *twilio.RestClient
	from        string
	countryCode string
	logger      *logrus.Logger
}

// NewTwilioSender creates a sender using the given account credentials.
// countryCode (e.g. "+977") is prepended to numbers stored without an
// international prefix.
func NewTwilioSender(accountSID, authToken, from, countryCode string, logger *logrus.Logger) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{client: client, from: from, countryCode: countryCode, logger: logger}
}

// Send dispatches a single message, normalizing the destination first.
func (t *TwilioSender) Send(to, body string) error {
	to = NormalizePhone(to, t.countryCode)
	params := &api.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send to %s: %w", to, err)
	}
	if resp.Sid != nil {
		t.logger.WithFields(logrus.Fields{"to": to, "sid": *resp.Sid}).Info("sms sent")
	}
	return nil
}

// NormalizePhone converts a stored phone number into a single
// international format. Numbers already starting with '+' pass through;
// anything else has leading zeroes stripped and the default country code
// prepended.
func NormalizePhone(phone, countryCode string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return countryCode + strings.TrimLeft(phone, "0")
}
