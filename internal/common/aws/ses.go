// internal/common/aws/ses.go
package aws

import (
	"context"
	"errors"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

var ErrNoRecipient = errors.New("email recipient is required")

// SESAPI is the subset of the SES client used here.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Email is a rendered message.
type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type SESClient struct {
	api  SESAPI
	from string
}

func NewSESClient(cfg sdkaws.Config, from string) *SESClient {
	return &SESClient{api: ses.NewFromConfig(cfg), from: from}
}

// NewSESClientWithAPI is used by tests to inject a fake.
func NewSESClientWithAPI(api SESAPI, from string) *SESClient {
	return &SESClient{api: api, from: from}
}

// Send delivers the email and returns the SES message id.
func (s *SESClient) Send(ctx context.Context, email Email) (string, error) {
	if email.To == "" {
		return "", ErrNoRecipient
	}

	body := &types.Body{Text: &types.Content{Data: sdkaws.String(email.Text)}}
	if email.HTML != "" {
		body.Html = &types.Content{Data: sdkaws.String(email.HTML)}
	}

	out, err := s.api.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{email.To}},
		Message: &types.Message{
			Subject: &types.Content{Data: sdkaws.String(email.Subject)},
			Body:    body,
		},
		Source: sdkaws.String(s.from),
	})
	if err != nil {
		return "", err
	}
	return sdkaws.ToString(out.MessageId), nil
}
