package web

// pageHTML is deliberately bare; styling is left to whoever embeds it.
const pageHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <title>tipsplit</title>
</head>
<body>
  <form method="POST" action="/update">
    <p>
      <label for="bill">Bill</label>
      $<input id="bill" name="bill" type="text" inputmode="decimal" value="{{.Bill}}" placeholder="0.00">
      {{with .Error "bill"}}<span class="err" id="bill-error">{{.}}</span>{{end}}
    </p>
    <p>
      <label for="tip">Custom tip %</label>
      <input id="tip" name="tip" type="text" inputmode="decimal" value="{{.Tip}}" placeholder="Custom">
      {{with .Error "tip"}}<span class="err" id="tip-error">{{.}}</span>{{end}}
    </p>
    <p>
      <label for="people">Number of People</label>
      <input id="people" name="people" type="number" step="1" value="{{.People}}" placeholder="0">
      {{with .Error "people"}}<span class="err" id="people-error">{{.}}</span>{{end}}
    </p>
    <button type="submit">Update</button>
  </form>

  <form method="POST" action="/preset">
    <span>Select Tip %</span>
    {{$v := .}}
    {{range .Presets}}
      <button type="submit" name="value" value="{{.}}"{{if $v.IsActive .}} class="active" aria-pressed="true"{{end}}>{{.}}%</button>
    {{end}}
  </form>

  <section>
    <p>Tip Amount / person: <output id="tip-per-person">{{.TipPerPersonDisplay}}</output></p>
    <p>Total / person: <output id="total-per-person">{{.TotalPerPersonDisplay}}</output></p>
    <form method="POST" action="/reset">
      <button type="submit" id="reset"{{if not .CanReset}} disabled{{end}}>RESET</button>
    </form>
  </section>

  <section>
    <form method="POST" action="/save">
      <input name="label" type="text" placeholder="Label (optional)">
      <button type="submit" id="save"{{if .Errors}} disabled{{end}}>Save split</button>
      {{with .SaveError}}<span class="err" id="save-error">{{.}}</span>{{end}}
    </form>
    {{if .Splits}}
    <ul id="history">
      {{range .Splits}}<li>{{.Label}}: {{currency .TotalPerPerson}} / person</li>{{end}}
    </ul>
    {{end}}
  </section>
</body>
</html>`
