// Package branding produces the attribution guard shipped with every
// exported site: a small script that writes the product credit into the
// reserved footer element, plus the license that forbids removing it.
package branding

import "strings"

// ProductName is the credited product.
const ProductName = "PortfolioX"

// Notice is the markup the guard writes into the footer.
const Notice = `<p style="text-align:center;font-size:14px;color:#888;">Generated using <strong>` + ProductName + `</strong></p>`

const scriptSource = `
// PortfolioX branding script.
// Adds the attribution required by LICENSE.txt.
// Removing or modifying this script is against the license terms.
(function () {
  var footerId = "__FOOTER_ID__";
  var notice = '__NOTICE__';

  function applyAttribution() {
    var footer = document.getElementById(footerId);
    if (!footer) {
      return;
    }
    footer.innerHTML = notice;
  }

  if (document.readyState === "loading") {
    document.addEventListener("DOMContentLoaded", applyAttribution);
  } else {
    applyAttribution();
  }
})();
`

// Script returns the unminified guard script.
func Script() string {
	return strings.NewReplacer(
		"__FOOTER_ID__", FooterElementID,
		"__NOTICE__", Notice,
	).Replace(scriptSource)
}
