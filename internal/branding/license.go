package branding

import "fmt"

const licenseTemplate = `LICENSE AGREEMENT FOR %[1]s GENERATED WEBSITE

This license agreement ("License") is a legal agreement between you (either an individual or a single entity) and %[1]s for the use of the generated portfolio website ("Website").

1. GRANT OF LICENSE
   %[1]s grants you a non-exclusive, non-transferable license to use and modify the Website for personal or commercial purposes, subject to the restrictions below.

2. RESTRICTIONS
   a. You may NOT remove, hide, or modify the "Generated using %[1]s" footer attribution that appears on the Website.
   b. You may NOT modify, decompile, or reverse engineer the "branding.js" file located in the "/protected" directory.
   c. You may NOT use any technical means to circumvent or remove the footer attribution.

3. OWNERSHIP
   %[1]s retains all intellectual property rights in the branding elements of the Website. All other content of the Website belongs to you.

4. TERMINATION
   This License will terminate automatically if you fail to comply with the limitations described herein. Upon termination, you must destroy all copies of the Website.

5. DISCLAIMER OF WARRANTY
   The Website is provided "AS IS" without warranty of any kind. %[1]s disclaims all warranties, either express or implied, including warranties of merchantability and fitness for a particular purpose.

6. LIMITATION OF LIABILITY
   In no event shall %[1]s be liable for any damages whatsoever arising out of the use of or inability to use the Website.

By using the Website, you acknowledge that you have read this License, understand it, and agree to be bound by its terms.

© %[2]d %[1]s. All rights reserved.`

// LicenseText returns the license shipped as LICENSE.txt. year is the
// export year and is the only time-dependent part of an archive's text.
func LicenseText(year int) string {
	return fmt.Sprintf(licenseTemplate, ProductName, year)
}
