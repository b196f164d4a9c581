package core

import (
	"fmt"
	"regexp"
	"strings"
)

var installDatePattern = regexp.MustCompile(`^\d{8}$`)

// RunInput carries the values a user supplies for one release-notes run.
type RunInput struct {
	// SearchURL is the tracker search link holding a jql or filter parameter.
	SearchURL string
	// VersionLabel names the release, e.g. "v2.4.1".
	VersionLabel string
	// InstallDate is the planned install date as YYYYMMDD.
	InstallDate string
	// OutputPath overrides the default artifact location when set.
	OutputPath string
}

// ValidateDate checks that InstallDate is exactly eight digits.
func (r *RunInput) ValidateDate() error {
	if r == nil {
		return fmt.Errorf("run input cannot be nil")
	}
	if !installDatePattern.MatchString(r.InstallDate) {
		return fmt.Errorf("%w: %q, expected YYYYMMDD", ErrInvalidDate, r.InstallDate)
	}
	return nil
}

// CleanVersion lower-cases the version label and strips one leading "v".
func (r *RunInput) CleanVersion() string {
	if r == nil {
		return ""
	}
	v := strings.ToLower(strings.TrimSpace(r.VersionLabel))
	return strings.TrimPrefix(v, "v")
}

// ArtifactName returns the default artifact file name v{version}_{date}{ext}.
func (r *RunInput) ArtifactName(ext string) string {
	return fmt.Sprintf("v%s_%s%s", r.CleanVersion(), r.InstallDate, ext)
}
