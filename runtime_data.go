package relay

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Period names a billing period in the plan tables.
type Period string

const (
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// RuntimeData is the document served by the runtime_data endpoint. It holds
// values that are not known at build time. A RuntimeData is replaced
// wholesale on every fetch and must not be modified once published.
type RuntimeData struct {
	FxaOrigin    string `json:"FXA_ORIGIN"`
	BasketOrigin string `json:"BASKET_ORIGIN,omitempty"`

	PeriodicalPremiumProductID string `json:"PERIODICAL_PREMIUM_PRODUCT_ID"`
	PhoneProductID             string `json:"PHONE_PRODUCT_ID"`
	BundleProductID            string `json:"BUNDLE_PRODUCT_ID"`
	MegabundleProductID        string `json:"MEGABUNDLE_PRODUCT_ID,omitempty"`

	PeriodicalPremiumPlans PlanTable `json:"PERIODICAL_PREMIUM_PLANS"`
	PhonePlans             PlanTable `json:"PHONE_PLANS"`
	BundlePlans            PlanTable `json:"BUNDLE_PLANS"`
	MegabundlePlans        PlanTable `json:"MEGABUNDLE_PLANS"`

	GoogleAnalyticsID string `json:"GOOGLE_ANALYTICS_ID"`
	GA4MeasurementID  string `json:"GA4_MEASUREMENT_ID"`
	CSPNonce          string `json:"CSP_NONCE,omitempty"`

	WaffleFlags    Waffles `json:"WAFFLE_FLAGS"`
	WaffleSwitches Waffles `json:"WAFFLE_SWITCHES"`

	MaxMinutesToVerifyRealPhone int `json:"MAX_MINUTES_TO_VERIFY_REAL_PHONE"`
}

// PlanTable holds the pricing of one product for the visitor's country.
type PlanTable struct {
	CountryCode        string `json:"country_code"`
	AvailableInCountry bool   `json:"available_in_country"`

	// PlanCountryLangMapping maps a country code to the plans offered
	// per language.
	PlanCountryLangMapping map[string]LanguagePlans `json:"plan_country_lang_mapping"`
}

// PlanDetails describes a single purchasable plan.
type PlanDetails struct {
	ID       string  `json:"id"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	URL      string  `json:"url,omitempty"`
}

// PeriodPlans maps billing periods to plans.
type PeriodPlans map[Period]PlanDetails

// LanguagePlan is one entry of a LanguagePlans list.
type LanguagePlan struct {
	Language string
	Plans    PeriodPlans
}

// LanguagePlans is a JSON object keyed by language code, kept in document
// order so that lookups can fall back to the first language.
type LanguagePlans []LanguagePlan

// Lookup returns the plans for the given language code, or the plans of the
// first language when the code is absent. The boolean is false only when
// the list is empty.
func (l LanguagePlans) Lookup(lang string) (PeriodPlans, bool) {
	if len(l) == 0 {
		return nil, false
	}
	for _, lp := range l {
		if lp.Language == lang {
			return lp.Plans, true
		}
	}
	return l[0].Plans, true
}

// Languages returns the language codes in document order.
func (l LanguagePlans) Languages() []string {
	langs := make([]string, len(l))
	for i, lp := range l {
		langs[i] = lp.Language
	}
	return langs
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *LanguagePlans) UnmarshalJSON(data []byte) error {
	iter := json.BorrowIterator(data)
	defer json.ReturnIterator(iter)

	var plans LanguagePlans
	iter.ReadMapCB(func(it *jsoniter.Iterator, lang string) bool {
		var pp PeriodPlans
		it.ReadVal(&pp)
		plans = append(plans, LanguagePlan{Language: lang, Plans: pp})
		return it.Error == nil
	})
	if iter.Error != nil && iter.Error != io.EOF {
		return fmt.Errorf("cannot decode language plans: %v", iter.Error)
	}
	*l = plans
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l LanguagePlans) MarshalJSON() ([]byte, error) {
	stream := json.BorrowStream(nil)
	defer json.ReturnStream(stream)

	stream.WriteObjectStart()
	for i, lp := range l {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(lp.Language)
		stream.WriteVal(lp.Plans)
	}
	stream.WriteObjectEnd()
	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

// Waffle is a named backend toggle. On the wire it is a two element array
// of name and state.
type Waffle struct {
	Name   string
	Active bool
}

// Waffles is an ordered list of toggles. Names may repeat; lookups use the
// first occurrence.
type Waffles []Waffle

// UnmarshalJSON implements json.Unmarshaler.
func (w *Waffle) UnmarshalJSON(data []byte) error {
	var tuple []interface{}
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if len(tuple) != 2 {
		return fmt.Errorf("waffle must have 2 elements, got %d", len(tuple))
	}
	name, ok := tuple[0].(string)
	if !ok {
		return fmt.Errorf("waffle name has unexpected type %T", tuple[0])
	}
	active, ok := tuple[1].(bool)
	if !ok {
		return fmt.Errorf("waffle %q state has unexpected type %T", name, tuple[1])
	}
	*w = Waffle{Name: name, Active: active}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (w Waffle) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{w.Name, w.Active})
}

// ParseRuntimeData decodes a runtime data document.
func ParseRuntimeData(body []byte) (*RuntimeData, error) {
	var rd RuntimeData
	if err := json.Unmarshal(body, &rd); err != nil {
		return nil, fmt.Errorf("cannot parse runtime data: %v", err)
	}
	return &rd, nil
}

// DefaultRuntimeData returns the document rendered by hydrated clients
// while the real one is pending or unavailable. Every call returns a new
// value.
func DefaultRuntimeData() *RuntimeData {
	usPlans := func(periods PeriodPlans) PlanTable {
		return PlanTable{
			CountryCode:        "US",
			AvailableInCountry: true,
			PlanCountryLangMapping: map[string]LanguagePlans{
				"US": {{Language: "*", Plans: periods}},
			},
		}
	}
	return &RuntimeData{
		FxaOrigin:                  "https://fxa-mock.com",
		BasketOrigin:               "https://basket-mock.com",
		PeriodicalPremiumProductID: "prod_123456789",
		PhoneProductID:             "prod_123456789",
		BundleProductID:            "prod_123456789",
		PeriodicalPremiumPlans: usPlans(PeriodPlans{
			PeriodMonthly: {ID: "price_1LYC79JNcmPzuWtRU7Q238yL", Price: 1.99, Currency: "USD"},
			PeriodYearly:  {ID: "price_1LYC7xJNcmPzuWtRcdKXCVZp", Price: 0.99, Currency: "USD"},
		}),
		PhonePlans: usPlans(PeriodPlans{
			PeriodMonthly: {ID: "price_1Li0w8JNcmPzuWtR2rGU80P3", Price: 4.99, Currency: "USD"},
			PeriodYearly:  {ID: "price_1Li15WJNcmPzuWtRIh0F4VwP", Price: 3.99, Currency: "USD"},
		}),
		BundlePlans: usPlans(PeriodPlans{
			PeriodYearly: {ID: "price_1LwoSDJNcmPzuWtR6wPJZeoh", Price: 6.99, Currency: "USD"},
		}),
		MegabundlePlans: usPlans(PeriodPlans{
			PeriodYearly: {ID: "price_1RMAopKb9q6OnNsLSGe1vLtt", Price: 8.25, Currency: "USD"},
		}),
		GoogleAnalyticsID:           "UA-123456789-0",
		GA4MeasurementID:            "G-XXXXXXXXX",
		WaffleFlags:                 Waffles{},
		WaffleSwitches:              Waffles{},
		MaxMinutesToVerifyRealPhone: 5,
	}
}
