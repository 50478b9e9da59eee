package relay

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// IsPeriodicalPremiumAvailableInCountry reports whether Premium can be
// bought in the visitor's country. It is false while rd is nil.
func IsPeriodicalPremiumAvailableInCountry(rd *RuntimeData) bool {
	return rd != nil && rd.PeriodicalPremiumPlans.AvailableInCountry
}

// IsPhonesAvailableInCountry is like IsPeriodicalPremiumAvailableInCountry
// for the phone masking plan.
func IsPhonesAvailableInCountry(rd *RuntimeData) bool {
	return rd != nil && rd.PhonePlans.AvailableInCountry
}

// IsBundleAvailableInCountry is like IsPeriodicalPremiumAvailableInCountry
// for the VPN bundle.
func IsBundleAvailableInCountry(rd *RuntimeData) bool {
	return rd != nil && rd.BundlePlans.AvailableInCountry
}

// IsMegabundleAvailableInCountry is like IsPeriodicalPremiumAvailableInCountry
// for the megabundle.
func IsMegabundleAvailableInCountry(rd *RuntimeData) bool {
	return rd != nil && rd.MegabundlePlans.AvailableInCountry
}

// GetPeriodicalPremiumPrice returns the Premium price for the given
// billing period, formatted for locale. Callers are expected to check
// IsPeriodicalPremiumAvailableInCountry first.
func GetPeriodicalPremiumPrice(rd *RuntimeData, period Period, locale string) (string, error) {
	if rd == nil {
		return "", ErrPlanUnavailable
	}
	return rd.PeriodicalPremiumPlans.price(period, locale)
}

// GetPhonesPrice returns the phone plan price for the given period.
func GetPhonesPrice(rd *RuntimeData, period Period, locale string) (string, error) {
	if rd == nil {
		return "", ErrPlanUnavailable
	}
	return rd.PhonePlans.price(period, locale)
}

// GetBundlePrice returns the yearly bundle price. The bundle is only sold
// yearly.
func GetBundlePrice(rd *RuntimeData, locale string) (string, error) {
	if rd == nil {
		return "", ErrPlanUnavailable
	}
	return rd.BundlePlans.price(PeriodYearly, locale)
}

// GetMegabundlePrice returns the yearly megabundle price.
func GetMegabundlePrice(rd *RuntimeData, locale string) (string, error) {
	if rd == nil {
		return "", ErrPlanUnavailable
	}
	return rd.MegabundlePlans.price(PeriodYearly, locale)
}

// GetPeriodicalPremiumSubscribeLink returns the checkout URL for Premium.
func GetPeriodicalPremiumSubscribeLink(rd *RuntimeData, period Period, locale string) (string, error) {
	if rd == nil {
		return "", ErrPlanUnavailable
	}
	plan, err := rd.PeriodicalPremiumPlans.Plan(period, locale)
	if err != nil {
		return "", err
	}
	return subscribeLink(rd.FxaOrigin, rd.PeriodicalPremiumProductID, plan.ID), nil
}

// GetPhoneSubscribeLink returns the checkout URL for the phone plan.
func GetPhoneSubscribeLink(rd *RuntimeData, period Period, locale string) (string, error) {
	if rd == nil {
		return "", ErrPlanUnavailable
	}
	plan, err := rd.PhonePlans.Plan(period, locale)
	if err != nil {
		return "", err
	}
	return subscribeLink(rd.FxaOrigin, rd.PhoneProductID, plan.ID), nil
}

// GetBundleSubscribeLink returns the checkout URL for the yearly bundle.
func GetBundleSubscribeLink(rd *RuntimeData, locale string) (string, error) {
	if rd == nil {
		return "", ErrPlanUnavailable
	}
	plan, err := rd.BundlePlans.Plan(PeriodYearly, locale)
	if err != nil {
		return "", err
	}
	return subscribeLink(rd.FxaOrigin, rd.BundleProductID, plan.ID), nil
}

// GetMegabundleSubscribeLink returns the checkout URL for the megabundle.
// Megabundle plans carry their own URL; the FxA product link is only
// built when it is missing.
func GetMegabundleSubscribeLink(rd *RuntimeData, locale string) (string, error) {
	if rd == nil {
		return "", ErrPlanUnavailable
	}
	plan, err := rd.MegabundlePlans.Plan(PeriodYearly, locale)
	if err != nil {
		return "", err
	}
	if plan.URL != "" {
		return plan.URL, nil
	}
	return subscribeLink(rd.FxaOrigin, rd.MegabundleProductID, plan.ID), nil
}

// Plan looks up the plan offered in the table's own country for the
// language of locale. When that language has no entry, the first language
// listed for the country is used.
func (t PlanTable) Plan(period Period, locale string) (PlanDetails, error) {
	langs, ok := t.PlanCountryLangMapping[t.CountryCode]
	if !ok {
		return PlanDetails{}, fmt.Errorf("%w: no plans for country %q", ErrPlanUnavailable, t.CountryCode)
	}
	periods, ok := langs.Lookup(languageCode(locale))
	if !ok {
		return PlanDetails{}, fmt.Errorf("%w: no languages for country %q", ErrPlanUnavailable, t.CountryCode)
	}
	plan, ok := periods[period]
	if !ok {
		return PlanDetails{}, fmt.Errorf("%w: no %s plan for country %q", ErrPlanUnavailable, period, t.CountryCode)
	}
	return plan, nil
}

func (t PlanTable) price(period Period, locale string) (string, error) {
	plan, err := t.Plan(period, locale)
	if err != nil {
		return "", err
	}
	return FormatPrice(plan, locale), nil
}

// FormatPrice renders the plan price in its currency for locale. The
// number uses the locale's separators, but the currency symbol always
// precedes it followed by a space, e.g. "€ 1,99" for de-DE and "$ 1.99"
// for en-US, where browsers would render "1,99 €" and "$1.99".
func FormatPrice(plan PlanDetails, locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	p := message.NewPrinter(tag)
	unit, err := currency.ParseISO(plan.Currency)
	if err != nil {
		return p.Sprintf("%.2f %s", plan.Price, plan.Currency)
	}
	return p.Sprint(currency.Symbol(unit.Amount(plan.Price)))
}

// languageCode returns the lower-case primary subtag of a locale such as
// "en-US" or "de". Legacy codes like "iw" are not canonicalized.
func languageCode(locale string) string {
	return strings.ToLower(strings.SplitN(locale, "-", 2)[0])
}

func subscribeLink(fxaOrigin, productID, planID string) string {
	return fxaOrigin + "/subscriptions/products/" + url.PathEscape(productID) + "?plan=" + url.QueryEscape(planID)
}
