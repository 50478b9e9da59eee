package relay

import (
	"fmt"
	"strconv"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
)

// Names of the built-in profiles.
const (
	ProfileProduction  = "production"
	ProfileDevelopment = "development"
	ProfileAPIMock     = "api-mock"
)

// Env holds the two build-time signals that select a Profile.
type Env struct {
	// MockAPI selects the API-mock profile.
	MockAPI bool
	// NodeEnv selects the development profile when it is "development".
	NodeEnv string
}

type rawEnv struct {
	MockAPI string `env:"NEXT_PUBLIC_MOCK_API"`
	NodeEnv string `env:"NODE_ENV"`
}

// EnvFromOS reads NEXT_PUBLIC_MOCK_API and NODE_ENV from the process
// environment. Only the exact string "true" enables MockAPI.
func EnvFromOS() (Env, error) {
	var raw rawEnv
	if err := env.Parse(&raw); err != nil {
		return Env{}, fmt.Errorf("error getting env configs: %w", err)
	}
	return Env{
		MockAPI: raw.MockAPI == "true",
		NodeEnv: raw.NodeEnv,
	}, nil
}

// FeatureFlags holds the build-time feature switches. The set of keys is
// fixed; see FeatureFlagNames.
type FeatureFlags struct {
	Tips                         bool `json:"tips"`
	GenerateCustomAliasMenu      bool `json:"generateCustomAliasMenu"`
	GenerateCustomAliasSubdomain bool `json:"generateCustomAliasSubdomain"`
	InterviewRecruitment         bool `json:"interviewRecruitment"`
	CSATSurvey                   bool `json:"csatSurvey"`
}

// FeatureFlagNames lists the keys accepted by Profile.IsFeatureEnabled.
var FeatureFlagNames = []string{
	"tips",
	"generateCustomAliasMenu",
	"generateCustomAliasSubdomain",
	"interviewRecruitment",
	"csatSurvey",
}

// Profile is a named, immutable runtime configuration. Values are selected
// once per process with ResolveProfile and should be treated as read-only.
type Profile struct {
	Name string

	// BackendOrigin and FrontendOrigin are base URLs. They are empty
	// for same-origin deployments.
	BackendOrigin  string
	FrontendOrigin string

	FxaLoginURL  string
	FxaLogoutURL string

	// EmailSizeLimitNumber is expressed in EmailSizeLimitUnit.
	EmailSizeLimitNumber int
	EmailSizeLimitUnit   string

	MaxFreeAliases             int
	MaxOnboardingAvailable     int
	MaxOnboardingFreeAvailable int

	MozmailDomain string
	SupportURL    string

	FeatureFlags FeatureFlags
}

// EmailSizeLimit renders the size limit with its unit, e.g. "150KB".
func (p Profile) EmailSizeLimit() string {
	return strconv.Itoa(p.EmailSizeLimitNumber) + p.EmailSizeLimitUnit
}

// RuntimeDataURL returns the absolute or origin-relative URL of the
// runtime data endpoint.
func (p Profile) RuntimeDataURL() string {
	return p.BackendOrigin + apiPrefix + runtimeDataPath
}

// IsFeatureEnabled looks up a build-time feature flag by its key name.
// Unknown names are reported as disabled.
func (p Profile) IsFeatureEnabled(name string) bool {
	switch name {
	case "tips":
		return p.FeatureFlags.Tips
	case "generateCustomAliasMenu":
		return p.FeatureFlags.GenerateCustomAliasMenu
	case "generateCustomAliasSubdomain":
		return p.FeatureFlags.GenerateCustomAliasSubdomain
	case "interviewRecruitment":
		return p.FeatureFlags.InterviewRecruitment
	case "csatSurvey":
		return p.FeatureFlags.CSATSurvey
	}
	return false
}

func baseProfile() Profile {
	return Profile{
		Name:                       ProfileProduction,
		FxaLoginURL:                "/accounts/fxa/login/?process=login",
		FxaLogoutURL:               "/accounts/logout/",
		EmailSizeLimitNumber:       150,
		EmailSizeLimitUnit:         "KB",
		MaxFreeAliases:             5,
		MaxOnboardingAvailable:     3,
		MaxOnboardingFreeAvailable: 3,
		MozmailDomain:              "mozmail.com",
		SupportURL:                 "https://support.mozilla.org/products/relay",
		FeatureFlags: FeatureFlags{
			Tips:                         true,
			GenerateCustomAliasMenu:      true,
			GenerateCustomAliasSubdomain: false,
			InterviewRecruitment:         true,
			CSATSurvey:                   true,
		},
	}
}

// profileOverrides only name scalar fields, so mergo never descends into
// FeatureFlags.
var profileOverrides = map[string]map[string]interface{}{
	ProfileProduction: {},
	ProfileDevelopment: {
		"Name":           ProfileDevelopment,
		"BackendOrigin":  "http://127.0.0.1:8000",
		"FrontendOrigin": "http://127.0.0.1:3000",
		"FxaLoginURL":    "http://127.0.0.1:8000/accounts/fxa/login/?process=login",
		"FxaLogoutURL":   "http://127.0.0.1:8000/accounts/logout/",
	},
	ProfileAPIMock: {
		"Name":         ProfileAPIMock,
		"FxaLoginURL":  "/mock/login",
		"FxaLogoutURL": "/mock/logout",
	},
}

var profiles = mustBuildProfiles()

func mustBuildProfiles() map[string]Profile {
	built := make(map[string]Profile, len(profileOverrides))
	for name, overrides := range profileOverrides {
		p := baseProfile()
		if err := mergo.Map(&p, overrides, mergo.WithOverride); err != nil {
			panic(fmt.Errorf("cannot build %s profile: %v", name, err))
		}
		built[name] = p
	}
	return built
}

// ResolveProfile selects the profile for the given environment. The first
// match wins: MockAPI selects the API-mock profile, NodeEnv "development"
// selects the development profile and anything else resolves to
// production. It never fails.
func ResolveProfile(e Env) Profile {
	switch {
	case e.MockAPI:
		return profiles[ProfileAPIMock]
	case e.NodeEnv == "development":
		return profiles[ProfileDevelopment]
	default:
		return profiles[ProfileProduction]
	}
}

// LookupProfile returns the built-in profile with the given name.
func LookupProfile(name string) (Profile, bool) {
	p, ok := profiles[name]
	return p, ok
}
