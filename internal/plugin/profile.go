package plugin

import (
	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"

	"github.com/PratikDhanave/appstack-bridge/internal/attribution"
)

// Platform names served by the bridge.
const (
	PlatformAndroid   = "android"
	PlatformIOS       = "ios"
	PlatformIOSLegacy = "ios_legacy"
)

// ErrorPolicy decides what a caller sees when the SDK fails.
type ErrorPolicy int

const (
	// PropagateErrors answers CONFIGURATION_ERROR / EVENT_SEND_ERROR.
	PropagateErrors ErrorPolicy = iota
	// SwallowErrors reports success and sends the failure to the
	// FailureRecorder, so the caller's pending call always resolves.
	SwallowErrors
)

// EventPayload selects which optional event field a platform forwards.
type EventPayload int

const (
	PayloadRevenue EventPayload = iota
	PayloadParameters
)

// appleAdsMinVersion is the first OS release with the Apple Ads attribution API.
var appleAdsMinVersion = semver.MustParse("15.0")

// Profile captures everything that differs between the platform adapters.
type Profile struct {
	Platform   string
	LogLevels  attribution.LogLevelTable
	Background bool
	Errors     ErrorPolicy
	Payload    EventPayload

	// AppleAds is false on platforms without the feature; the call is then
	// answered with false and the SDK is not touched.
	AppleAds  bool
	OSVersion *semver.Version

	// Queries enables getAppstackId and isSdkDisabled.
	Queries bool
}

// AndroidProfile runs synchronously and surfaces SDK errors.
func AndroidProfile() Profile {
	return Profile{
		Platform:  PlatformAndroid,
		LogLevels: attribution.AndroidLogLevels,
		Errors:    PropagateErrors,
		Payload:   PayloadRevenue,
	}
}

// IOSProfile runs SDK calls in the background, always resolves the caller and
// supports the identity queries.
func IOSProfile(osVersion string) (Profile, error) {
	v, err := semver.NewVersion(osVersion)
	if err != nil {
		return Profile{}, errors.Wrapf(err, "invalid iOS version %q", osVersion)
	}
	return Profile{
		Platform:   PlatformIOS,
		LogLevels:  attribution.IOSLogLevels,
		Background: true,
		Errors:     SwallowErrors,
		Payload:    PayloadParameters,
		AppleAds:   true,
		OSVersion:  v,
		Queries:    true,
	}, nil
}

// IOSLegacyProfile is the older synchronous iOS binding that forwards revenue.
func IOSLegacyProfile(osVersion string) (Profile, error) {
	v, err := semver.NewVersion(osVersion)
	if err != nil {
		return Profile{}, errors.Wrapf(err, "invalid iOS version %q", osVersion)
	}
	return Profile{
		Platform:  PlatformIOSLegacy,
		LogLevels: attribution.IOSLogLevels,
		Errors:    SwallowErrors,
		Payload:   PayloadRevenue,
		AppleAds:  true,
		OSVersion: v,
	}, nil
}

// ProfileFor builds the profile for a platform name.
func ProfileFor(platform, osVersion string) (Profile, error) {
	switch platform {
	case PlatformAndroid:
		return AndroidProfile(), nil
	case PlatformIOS:
		return IOSProfile(osVersion)
	case PlatformIOSLegacy:
		return IOSLegacyProfile(osVersion)
	}
	return Profile{}, errors.Errorf("unknown platform %q", platform)
}

func (p Profile) appleAdsAvailable() bool {
	return p.OSVersion != nil && !p.OSVersion.LessThan(appleAdsMinVersion)
}
