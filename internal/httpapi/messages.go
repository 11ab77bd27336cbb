package httpapi

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/champions-academy/clubgate/internal/clubgate/types"
)

// LangParam overrides Accept-Language when present.
const LangParam = "lang"

const (
	msgAllowed        = "scan.allowed"
	msgAlreadyIn      = "scan.already_checked_in"
	msgNotFound       = "scan.member_not_found"
	msgNotActive      = "scan.member_not_active"
	msgPaymentDue     = "scan.payment_required"
	msgNoSubscription = "scan.no_active_subscription"
	msgExpired        = "scan.subscription_expired"
	msgInvalidUID     = "scan.invalid_uid"
	msgInvalidRequest = "scan.invalid_request"
	msgInternal       = "error.internal"
	msgUnavailable    = "error.unavailable"
	msgDebtPlan       = "debt.subscription"
	msgDebtInsurance  = "debt.insurance"
	msgDebtPending    = "debt.pending"
)

// French is the house language; English is offered to visiting members.
var supportedLanguages = []language.Tag{language.French, language.English}

var languageMatcher = language.NewMatcher(supportedLanguages)

var messages = func() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.French))
	set := func(key, fr, en string) {
		_ = b.SetString(language.French, key, fr)
		_ = b.SetString(language.English, key, en)
	}

	set(msgAllowed, "Accès autorisé - Bienvenue!", "Access granted - Welcome!")
	set(msgAlreadyIn, "Accès autorisé - Déjà enregistré", "Access granted - Already checked in")
	set(msgNotFound, "Membre non reconnu - Carte RFID ou code membre invalide", "Member not recognized - Invalid RFID card or member code")
	set(msgNotActive, "Accès refusé - Membre %s", "Access denied - Member is %s")
	set(msgPaymentDue, "Accès refusé - Paiement de %s€ requis", "Access denied - Payment of €%s required")
	set(msgNoSubscription, "Aucun abonnement actif", "No active subscription")
	set(msgExpired, "Abonnement expiré", "Subscription expired")
	set(msgInvalidUID, "UID invalide", "Invalid UID")
	set(msgInvalidRequest, "Requête invalide", "Invalid request")
	set(msgInternal, "Erreur interne du serveur", "Internal server error")
	set(msgUnavailable, "Service temporairement indisponible", "Service temporarily unavailable")
	set(msgDebtPlan, "Abonnement %s: %s€", "Subscription %s: €%s")
	set(msgDebtInsurance, "Assurance annuelle: %s€", "Annual insurance: €%s")
	set(msgDebtPending, "Paiement en attente", "Payment pending")
	return b
}()

// resolveLanguage picks ?lang=, then Accept-Language, then French.
func resolveLanguage(r *http.Request) language.Tag {
	if v := strings.TrimSpace(r.URL.Query().Get(LangParam)); v != "" {
		if tag, err := language.Parse(v); err == nil {
			return matchLanguage(tag)
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			return matchLanguage(tags...)
		}
	}
	return language.French
}

func matchLanguage(tags ...language.Tag) language.Tag {
	_, idx, conf := languageMatcher.Match(tags...)
	if conf == language.No {
		return language.French
	}
	return supportedLanguages[idx]
}

func newPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(messages))
}

// renderDecision maps a decision to its HTTP status and localized body.
func renderDecision(p *message.Printer, d types.Decision) (int, types.ScanResponse) {
	resp := types.ScanResponse{Member: d.Member}

	switch d.Outcome {
	case types.OutcomeAllowed:
		resp.Success = true
		if d.Reason == types.ReasonDuplicateScan {
			resp.Message = p.Sprintf(msgAlreadyIn)
		} else {
			resp.Message = p.Sprintf(msgAllowed)
		}
		return http.StatusOK, resp

	case types.OutcomeNotFound:
		resp.Message = p.Sprintf(msgNotFound)
		return http.StatusNotFound, resp
	}

	switch d.Reason {
	case types.ReasonMemberNotActive:
		resp.Message = p.Sprintf(msgNotActive, d.MemberStatus)
	case types.ReasonOutstandingBalance:
		var due int64
		if d.Balance != nil {
			due = d.Balance.AmountDueCents
			resp.Balance = &types.BalanceInfo{
				AmountDue: types.CentsToUnits(due),
				Note:      debtNote(p, *d.Balance),
			}
		}
		resp.Message = p.Sprintf(msgPaymentDue, types.FormatCents(due))
	case types.ReasonNoActiveSubscription:
		resp.Message = p.Sprintf(msgNoSubscription)
	case types.ReasonSubscriptionExpired:
		resp.Message = p.Sprintf(msgExpired)
	default:
		resp.Message = p.Sprintf(msgInternal)
		return http.StatusInternalServerError, resp
	}
	return http.StatusForbidden, resp
}

// debtNote joins the debt lines with ", ", or says the payment is pending
// when a positive balance has no itemised cause.
func debtNote(p *message.Printer, b types.Balance) string {
	if len(b.Debts) == 0 {
		return p.Sprintf(msgDebtPending)
	}
	parts := make([]string, 0, len(b.Debts))
	for _, d := range b.Debts {
		switch d.Kind {
		case types.DebtSubscription:
			parts = append(parts, p.Sprintf(msgDebtPlan, d.Label, types.FormatCents(d.AmountCents)))
		case types.DebtInsurance:
			parts = append(parts, p.Sprintf(msgDebtInsurance, types.FormatCents(d.AmountCents)))
		}
	}
	return strings.Join(parts, ", ")
}
