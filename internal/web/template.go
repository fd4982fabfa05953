package web

import (
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"time"

	"github.com/jgrew/bonsaibox/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"state": func(on bool) string {
		if on {
			return "ON"
		}
		return "OFF"
	},
	"cls": func(on bool) string {
		if on {
			return "on"
		}
		return "off"
	},
	"localtime": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.Local().Format("15:04:05")
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="10">
<title>Bonsai Box</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.normal { color: green; }
.degraded { color: orange; font-weight: bold; }
.failsafe { color: red; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Bonsai Box</h1>

<h2>Climate</h2>
<table>
{{if .Reading}}
<tr><th>Temperature</th><td>{{printf "%.2f" .Reading.TemperatureC}} &deg;C</td></tr>
<tr><th>Humidity</th><td>{{printf "%.2f" .Reading.HumidityPct}} %RH</td></tr>
<tr><th>Read at</th><td>{{localtime .Reading.Time}}</td></tr>
{{else}}
<tr><th>Reading</th><td class="degraded">no reading yet</td></tr>
{{end}}
<tr><th>Loop mode</th><td class="{{if eq (printf "%s" .Mode) "NORMAL"}}normal{{else if eq (printf "%s" .Mode) "DEGRADED"}}degraded{{else}}failsafe{{end}}">{{.Mode}}</td></tr>
<tr><th>Sensor failures</th><td>{{.ConsecutiveFailures}}</td></tr>
<tr><th>Last cycle</th><td>{{localtime .LastCycle}}</td></tr>
</table>

<h2>Actuators</h2>
<table>
<tr><th>Fan</th><td class="{{cls .Actuators.Fan}}">{{state .Actuators.Fan}}</td><td>{{localtime .Actuators.FanChanged}}</td></tr>
<tr><th>Humidifier</th><td class="{{cls .Actuators.Humidifier}}">{{state .Actuators.Humidifier}}</td><td>{{localtime .Actuators.HumidifierChanged}}</td></tr>
<tr><th>Grow lights</th><td class="{{cls .Actuators.Lights}}">{{state .Actuators.Lights}}</td><td>{{localtime .Actuators.LightsChanged}}</td></tr>
</table>

<h2>Daemon</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Cycle period</th><td>{{.Config.PeriodMs}} ms</td></tr>
<tr><th>Dwell time</th><td>{{.Config.DwellMs}} ms</td></tr>
</table>

<p><a href="/index.json">JSON</a> &middot; <a href="/metrics">metrics</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	if err := indexTmpl.Execute(w, snap); err != nil {
		slog.Error("render status page", "error", err)
	}
}
