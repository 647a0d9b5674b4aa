package web

import (
	"fmt"
	"html/template"
	"time"
)

// remainingString formats the time left on a token as MM:SS, clamped at
// 00:00. The page script keeps recomputing the same value client-side from
// the absolute expiry, so first paint and later ticks agree.
func remainingString(expiresAt, now time.Time) string {
	left := int(expiresAt.Sub(now).Seconds())
	if left <= 0 {
		return "00:00"
	}
	return fmt.Sprintf("%02d:%02d", left/60, left%60)
}

type cardEcho struct {
	CardNumber   string
	CVV          string
	ExpiryMonth  string
	ExpiryYear   string
	CardPassword string
	Captcha      string
}

type paymentPageData struct {
	Token        string
	TerminalName string
	Website      string
	Amount       int64
	ExpiresAt    string // RFC3339, consumed by the countdown script
	Remaining    string
	Notice       string // decision-submission failure shown above the form
	Card         cardEcho
}

type formField struct {
	Name  string
	Value string
}

type redirectPageData struct {
	Outcome     string // e.g. "OK", "Failed", "CanceledByUser"
	RedirectURL string
	Fields      []formField
}

type invalidPageData struct {
	Title  string
	Reason string
}

var pageStyle = `
body{font-family:system-ui,Arial,sans-serif;margin:2rem;background:#f7f7f8}
.card{max-width:560px;margin:0 auto;border:1px solid #ddd;border-radius:12px;padding:24px;background:#fff}
h1{font-size:1.3rem}
label{display:block;margin:12px 0 4px;font-weight:600}
input{width:100%;box-sizing:border-box;padding:8px;border:1px solid #bbb;border-radius:6px}
.row{display:flex;gap:12px}.row>div{flex:1}
.actions{display:flex;gap:12px;margin-top:20px}
button{padding:10px 16px;border-radius:8px;border:1px solid #888;cursor:pointer}
button:disabled{opacity:.5;cursor:not-allowed}
.submit{background:#057a55;color:#fff;border-color:#057a55}
.fail{background:#b00020;color:#fff;border-color:#b00020}
.notice{border:1px solid #b00020;color:#b00020;border-radius:8px;padding:10px;margin-bottom:12px}
.meta{color:#444;font-size:.95rem}
.countdown{font-variant-numeric:tabular-nums;font-weight:700}
.small{font-size:12px;color:#666}
`

var paymentPage = template.Must(template.New("payment").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width,initial-scale=1" />
<title>Saman Internet Payment Gateway (Test)</title>
<style>` + pageStyle + `</style>
</head>
<body>
<div class="card">
<h1>Saman Bank Internet Payment Gateway (Test)</h1>
<p class="meta">
Merchant: <b>{{.TerminalName}}</b> ({{.Website}})<br/>
Amount: <b>{{.Amount}} IRR</b><br/>
Time remaining: <span id="countdown" class="countdown" data-expires-at="{{.ExpiresAt}}">{{.Remaining}}</span>
</p>
{{if .Notice}}<div class="notice">{{.Notice}}</div>{{end}}
<form method="POST" id="payform">
<input type="hidden" name="token" value="{{.Token}}" />
<label for="cardNumber">Card Number</label>
<input id="cardNumber" name="cardNumber" type="text" maxlength="16" value="{{.Card.CardNumber}}" placeholder="Enter 16-digit card number" />
<label for="cvv">CVV</label>
<input id="cvv" name="cvv" type="password" maxlength="4" value="{{.Card.CVV}}" placeholder="Enter CVV" />
<div class="row">
<div>
<label for="expiryMonth">Expiry Month</label>
<input id="expiryMonth" name="expiryMonth" type="number" min="1" max="12" value="{{.Card.ExpiryMonth}}" placeholder="MM" />
</div>
<div>
<label for="expiryYear">Expiry Year</label>
<input id="expiryYear" name="expiryYear" type="number" min="2024" max="2100" value="{{.Card.ExpiryYear}}" placeholder="YYYY" />
</div>
</div>
<label for="captcha">Captcha (ignored)</label>
<input id="captcha" name="captcha" type="text" value="{{.Card.Captcha}}" placeholder="Enter captcha text" />
<label for="cardPassword">Card Password</label>
<input id="cardPassword" name="cardPassword" type="password" value="{{.Card.CardPassword}}" placeholder="Enter card password" />
<div class="actions">
<button class="submit" type="submit" name="decision" value="submit" data-needs-card>Submit Payment</button>
<button class="fail" type="submit" name="decision" value="fail" data-needs-card>Simulate Failure</button>
<button type="submit" name="decision" value="cancel" formnovalidate>Cancel</button>
</div>
<p class="small">This is a mock gateway for integration testing. No real money moves.</p>
</form>
</div>
<script>
(function () {
	var el = document.getElementById("countdown");
	var expiresAt = new Date(el.getAttribute("data-expires-at")).getTime();
	var reloaded = false;
	var timer = setInterval(tick, 1000);
	function tick() {
		var left = Math.floor((expiresAt - Date.now()) / 1000);
		if (left <= 0) {
			el.textContent = "00:00";
			if (!reloaded) {
				reloaded = true;
				clearInterval(timer);
				location.reload();
			}
			return;
		}
		var m = Math.floor(left / 60), s = left % 60;
		el.textContent = (m < 10 ? "0" + m : "" + m) + ":" + (s < 10 ? "0" + s : "" + s);
	}
	tick();
})();
(function () {
	var card = document.getElementById("cardNumber");
	var gated = document.querySelectorAll("button[data-needs-card]");
	function refresh() {
		var ok = /^[0-9]{16}$/.test(card.value);
		gated.forEach(function (b) { b.disabled = !ok; });
	}
	card.addEventListener("input", refresh);
	refresh();
	document.getElementById("payform").addEventListener("submit", function () {
		// one decision in flight at a time
		setTimeout(function () {
			gated.forEach(function (b) { b.disabled = true; });
		}, 0);
	});
})();
</script>
</body>
</html>
`))

// redirectPage renders the legacy callback form. The field names below are
// a byte-exact compatibility surface with merchant integrations, including
// the historical misspelling OrginalAmount.
var redirectPage = template.Must(template.New("redirect").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width,initial-scale=1" />
<title>Payment {{.Outcome}}</title>
<style>` + pageStyle + `</style>
</head>
<body>
<div class="card">
<h1>Payment result: {{.Outcome}}</h1>
<p class="meta">Press the button below to return to the merchant site.</p>
<form method="POST" action="{{.RedirectURL}}">
{{range .Fields}}<input type="hidden" name="{{.Name}}" value="{{.Value}}" />
{{end}}<button class="submit" type="submit">Return to merchant</button>
</form>
<p class="small">A production gateway would auto-submit this form.</p>
</div>
</body>
</html>
`))

var invalidPage = template.Must(template.New("invalid").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width,initial-scale=1" />
<title>{{.Title}}</title>
<style>` + pageStyle + `</style>
</head>
<body>
<div class="card">
<h1>{{.Title}}</h1>
<p class="meta">{{.Reason}}</p>
</div>
</body>
</html>
`))
