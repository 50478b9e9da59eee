package relay

import (
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestPlanPredicates_NilData(t *testing.T) {
	c := qt.New(t)
	c.Assert(IsPeriodicalPremiumAvailableInCountry(nil), qt.IsFalse)
	c.Assert(IsPhonesAvailableInCountry(nil), qt.IsFalse)
	c.Assert(IsBundleAvailableInCountry(nil), qt.IsFalse)
	c.Assert(IsMegabundleAvailableInCountry(nil), qt.IsFalse)

	_, err := GetPeriodicalPremiumPrice(nil, PeriodMonthly, "en-US")
	c.Assert(err, qt.ErrorIs, ErrPlanUnavailable)
	_, err = GetPhonesPrice(nil, PeriodMonthly, "en-US")
	c.Assert(err, qt.ErrorIs, ErrPlanUnavailable)
	_, err = GetBundlePrice(nil, "en-US")
	c.Assert(err, qt.ErrorIs, ErrPlanUnavailable)
	_, err = GetMegabundlePrice(nil, "en-US")
	c.Assert(err, qt.ErrorIs, ErrPlanUnavailable)
	_, err = GetMegabundleSubscribeLink(nil, "en-US")
	c.Assert(err, qt.ErrorIs, ErrPlanUnavailable)
}

func TestPlanPredicates_Availability(t *testing.T) {
	c := qt.New(t)
	rd, err := ParseRuntimeData([]byte(sampleRuntimeData))
	c.Assert(err, qt.IsNil)
	c.Assert(IsPeriodicalPremiumAvailableInCountry(rd), qt.IsTrue)
	c.Assert(IsPhonesAvailableInCountry(rd), qt.IsFalse)
	c.Assert(IsBundleAvailableInCountry(rd), qt.IsFalse)
	c.Assert(IsMegabundleAvailableInCountry(rd), qt.IsFalse)
}

func TestPlanTable_PlanFallsBackToFirstLanguage(t *testing.T) {
	c := qt.New(t)
	rd, err := ParseRuntimeData([]byte(sampleRuntimeData))
	c.Assert(err, qt.IsNil)

	for _, test := range []struct {
		locale string
		want   string
	}{
		{"de-CH", "price_ch_de_m"},
		{"it", "price_ch_it_m"},
		{"en-US", "price_ch_fr_m"},
		{"", "price_ch_fr_m"},
	} {
		plan, err := rd.PeriodicalPremiumPlans.Plan(PeriodMonthly, test.locale)
		c.Assert(err, qt.IsNil)
		c.Assert(plan.ID, qt.Equals, test.want, qt.Commentf("locale %q", test.locale))
	}
}

func TestPlanTable_Unavailable(t *testing.T) {
	c := qt.New(t)
	rd, err := ParseRuntimeData([]byte(sampleRuntimeData))
	c.Assert(err, qt.IsNil)

	// No yearly plan.
	_, err = rd.PeriodicalPremiumPlans.Plan(PeriodYearly, "fr")
	c.Assert(err, qt.ErrorIs, ErrPlanUnavailable)

	// Country present without languages.
	rd.PhonePlans.PlanCountryLangMapping["CH"] = LanguagePlans{}
	_, err = GetPhonesPrice(rd, PeriodMonthly, "fr")
	c.Assert(err, qt.ErrorIs, ErrPlanUnavailable)

	// Country missing from the mapping.
	_, err = GetBundlePrice(rd, "fr")
	c.Assert(err, qt.ErrorMatches, `plan not available in country: no plans for country "CH"`)
	_, err = GetBundleSubscribeLink(rd, "fr")
	c.Assert(err, qt.ErrorIs, ErrPlanUnavailable)
}

func TestPrices(t *testing.T) {
	c := qt.New(t)
	rd := DefaultRuntimeData()

	price, err := GetPeriodicalPremiumPrice(rd, PeriodMonthly, "en-US")
	c.Assert(err, qt.IsNil)
	c.Assert(strings.Contains(price, "1.99"), qt.IsTrue, qt.Commentf("price %q", price))

	price, err = GetPeriodicalPremiumPrice(rd, PeriodYearly, "en-US")
	c.Assert(err, qt.IsNil)
	c.Assert(strings.Contains(price, "0.99"), qt.IsTrue, qt.Commentf("price %q", price))

	price, err = GetPhonesPrice(rd, PeriodMonthly, "en")
	c.Assert(err, qt.IsNil)
	c.Assert(strings.Contains(price, "4.99"), qt.IsTrue, qt.Commentf("price %q", price))

	price, err = GetBundlePrice(rd, "en")
	c.Assert(err, qt.IsNil)
	c.Assert(strings.Contains(price, "6.99"), qt.IsTrue, qt.Commentf("price %q", price))

	price, err = GetMegabundlePrice(rd, "en")
	c.Assert(err, qt.IsNil)
	c.Assert(strings.Contains(price, "8.25"), qt.IsTrue, qt.Commentf("price %q", price))
}

func TestFormatPrice_UnknownCurrency(t *testing.T) {
	c := qt.New(t)
	price := FormatPrice(PlanDetails{Price: 3.5, Currency: "???"}, "en")
	c.Assert(price, qt.Equals, "3.50 ???")
}

func TestSubscribeLinks(t *testing.T) {
	c := qt.New(t)
	rd := DefaultRuntimeData()
	rd.FxaOrigin = "https://accounts.example.com"

	link, err := GetPeriodicalPremiumSubscribeLink(rd, PeriodMonthly, "en-US")
	c.Assert(err, qt.IsNil)
	c.Assert(link, qt.Equals, "https://accounts.example.com/subscriptions/products/prod_123456789?plan=price_1LYC79JNcmPzuWtRU7Q238yL")

	link, err = GetPhoneSubscribeLink(rd, PeriodYearly, "en-US")
	c.Assert(err, qt.IsNil)
	c.Assert(link, qt.Equals, "https://accounts.example.com/subscriptions/products/prod_123456789?plan=price_1Li15WJNcmPzuWtRIh0F4VwP")

	link, err = GetBundleSubscribeLink(rd, "en-US")
	c.Assert(err, qt.IsNil)
	c.Assert(link, qt.Equals, "https://accounts.example.com/subscriptions/products/prod_123456789?plan=price_1LwoSDJNcmPzuWtR6wPJZeoh")
}

func TestMegabundleSubscribeLink(t *testing.T) {
	c := qt.New(t)
	rd := DefaultRuntimeData()
	rd.MegabundleProductID = "prod_mega"

	link, err := GetMegabundleSubscribeLink(rd, "en")
	c.Assert(err, qt.IsNil)
	c.Assert(link, qt.Equals, "https://fxa-mock.com/subscriptions/products/prod_mega?plan=price_1RMAopKb9q6OnNsLSGe1vLtt")

	plans, _ := rd.MegabundlePlans.PlanCountryLangMapping["US"].Lookup("*")
	plan := plans[PeriodYearly]
	plan.URL = "https://checkout.example.com/mega"
	plans[PeriodYearly] = plan
	link, err = GetMegabundleSubscribeLink(rd, "en")
	c.Assert(err, qt.IsNil)
	c.Assert(link, qt.Equals, "https://checkout.example.com/mega")
}

func TestLanguageCode(t *testing.T) {
	c := qt.New(t)
	for locale, want := range map[string]string{
		"en-US": "en",
		"de":    "de",
		"fr-CA": "fr",
		"pt-BR": "pt",
		"EN-gb": "en",
		"iw-IL": "iw",
		"in":    "in",
		"tl":    "tl",
		"":      "",
	} {
		c.Assert(languageCode(locale), qt.Equals, want, qt.Commentf("locale %q", locale))
	}
}

func TestPlanTable_LegacyLanguageCode(t *testing.T) {
	c := qt.New(t)
	rd, err := ParseRuntimeData([]byte(`{
		"PERIODICAL_PREMIUM_PLANS": {
			"country_code": "IL",
			"available_in_country": true,
			"plan_country_lang_mapping": {
				"IL": {
					"en": {"monthly": {"id": "price_il_en_m", "price": 1.99, "currency": "USD"}},
					"iw": {"monthly": {"id": "price_il_iw_m", "price": 1.99, "currency": "USD"}}
				}
			}
		}
	}`))
	c.Assert(err, qt.IsNil)
	plan, err := rd.PeriodicalPremiumPlans.Plan(PeriodMonthly, "iw-IL")
	c.Assert(err, qt.IsNil)
	c.Assert(plan.ID, qt.Equals, "price_il_iw_m")
}

func TestFormatPrice_Locales(t *testing.T) {
	c := qt.New(t)
	for _, test := range []struct {
		plan   PlanDetails
		locale string
		want   string
	}{
		{PlanDetails{Price: 1.99, Currency: "USD"}, "en-US", "$ 1.99"},
		{PlanDetails{Price: 1.99, Currency: "EUR"}, "de-DE", "€ 1,99"},
	} {
		c.Assert(FormatPrice(test.plan, test.locale), qt.Equals, test.want, qt.Commentf("locale %q", test.locale))
	}
}
