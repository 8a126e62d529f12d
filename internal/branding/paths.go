package branding

// Archive locations of the guard script and license, and the element the
// script writes into. index.html must reference all three.
const (
	ScriptPath      = "protected/branding.js"
	LicensePath     = "LICENSE.txt"
	FooterElementID = "portfolio-footer"
)
