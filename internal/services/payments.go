package services

import (
	"fmt"
	"os"

	"github.com/dim-stef/therapy-backend/db"
	"github.com/dim-stef/therapy-backend/internal/models"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/account"
	"github.com/stripe/stripe-go/v76/accountlink"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/loginlink"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// Every therapy session charges the same fixed amount; the platform keeps
// a fixed fee and the remainder is transferred to the therapist's account.
const (
	SessionAmountCents = 2000
	PlatformFeeCents   = 300
	SessionCurrency    = "usd"

	// Metadata key correlating provider payments back to a TherapySession
	// surrogate id.
	MetadataSessionKey = "therapy_session"
)

func InitStripe() {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
}

func clientURL() string {
	if url := os.Getenv("CLIENT_URL"); url != "" {
		return url
	}
	return "http://localhost:3000"
}

// OnboardTherapist creates the payable account for the profile's user if
// one does not exist yet, requests a fresh onboarding link and stores the
// linkage on the profile. Re-invocable to refresh an expired link.
func OnboardTherapist(profile *models.Profile, email string) error {
	if stripe.Key == "" {
		return fmt.Errorf("stripe secret key not configured")
	}

	if profile.StripeID == "" {
		acct, err := account.New(&stripe.AccountParams{
			Type:  stripe.String(string(stripe.AccountTypeExpress)),
			Email: stripe.String(email),
		})
		if err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		profile.StripeID = acct.ID
	}

	link, err := accountlink.New(&stripe.AccountLinkParams{
		Account:    stripe.String(profile.StripeID),
		RefreshURL: stripe.String(clientURL() + "/onboarding/refresh"),
		ReturnURL:  stripe.String(clientURL() + "/onboarding/return"),
		Type:       stripe.String("account_onboarding"),
	})
	if err != nil {
		return fmt.Errorf("create account link: %w", err)
	}

	profile.StripeAccountLink = link.URL
	profile.LinkCreated = link.Created
	profile.LinkExpiresAt = link.ExpiresAt

	return db.DB.Model(profile).Updates(map[string]interface{}{
		"stripe_id":           profile.StripeID,
		"stripe_account_link": profile.StripeAccountLink,
		"link_created":        profile.LinkCreated,
		"link_expires_at":     profile.LinkExpiresAt,
	}).Error
}

// ChargesEnabled reports whether the payable account can currently accept
// charges. Therapist accounts are provisionally onboarded until this
// resolves true.
func ChargesEnabled(accountID string) (bool, error) {
	acct, err := account.GetByID(accountID, nil)
	if err != nil {
		return false, err
	}
	return acct.ChargesEnabled, nil
}

// CreateLoginLink returns a dashboard login link for an onboarded account.
func CreateLoginLink(accountID string) (string, error) {
	link, err := loginlink.New(&stripe.LoginLinkParams{
		Account: stripe.String(accountID),
	})
	if err != nil {
		return "", err
	}
	return link.URL, nil
}

// CreateCheckoutSession requests a hosted checkout page charging the fixed
// session amount, splitting the platform fee off and routing the remainder
// to the therapist's account. The therapy session surrogate travels in the
// payment metadata for webhook correlation.
func CreateCheckoutSession(accountID, sessionSurrogate string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(clientURL() + "/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(clientURL() + "/cancelled"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(SessionCurrency),
					UnitAmount: stripe.Int64(SessionAmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Therapy session"),
					},
				},
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(PlatformFeeCents),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(accountID),
			},
			Metadata: map[string]string{MetadataSessionKey: sessionSurrogate},
		},
	}

	checkoutSession, err := session.New(params)
	if err != nil {
		return "", err
	}

	return checkoutSession.ID, nil
}

// CreateDirectPayment is the server-initiated charge variant bypassing
// hosted checkout, with the same fee-split and metadata semantics. Returns
// the client secret the frontend confirms against.
func CreateDirectPayment(accountID, sessionSurrogate string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:               stripe.Int64(SessionAmountCents),
		Currency:             stripe.String(SessionCurrency),
		PaymentMethodTypes:   stripe.StringSlice([]string{"card"}),
		ApplicationFeeAmount: stripe.Int64(PlatformFeeCents),
		TransferData: &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(accountID),
		},
	}
	params.AddMetadata(MetadataSessionKey, sessionSurrogate)

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}

	return intent.ClientSecret, nil
}
