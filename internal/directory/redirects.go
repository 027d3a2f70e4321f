package directory

// Redirect rules for location codes retired or renumbered by the Environment
// Ministry database. Hand-maintained; update when the upstream publishes a
// station list revision.
var (
	// deprecatedCodes are stations that no longer exist. Requests redirect
	// to the site root.
	deprecatedCodes = map[string]struct{}{
		"41171": {}, // 今市
	}

	// changedCodes map an old code to its replacement.
	changedCodes = map[string]string{
		"45147": "45148", // 銚子
		"74181": "74182", // 高知
		"88836": "88837", // 名瀬
	}
)

// ResolveRedirect returns the path a stale location code should redirect to,
// or "" when no redirect applies. Replacement codes themselves never redirect,
// so resolution cannot chain.
func ResolveRedirect(code string) string {
	if _, ok := deprecatedCodes[code]; ok {
		return "/"
	}
	if newCode, ok := changedCodes[code]; ok {
		return "/wbgt/" + newCode
	}
	return ""
}
