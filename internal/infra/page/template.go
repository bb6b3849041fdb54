package page

import "html/template"

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"stamp": func(v interface{ Format(string) string }) string { return v.Format("2006-01-02 15:04") },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} {{.Date}}</title>
<style>
body{font-family:system-ui,sans-serif;max-width:46rem;margin:2rem auto;padding:0 1rem;color:#222}
nav{display:flex;gap:1rem;align-items:center;margin-bottom:1.5rem}
li{margin-bottom:1rem}.meta{color:#666;font-size:.85rem}
</style>
</head>
<body data-report-date="{{.Date}}">
<h1>{{.Title}}</h1>
<nav>
  <a id="prev" hidden>&larr; previous</a>
  <select id="dates" aria-label="Report date"><option>{{.Date}}</option></select>
  <a id="next" hidden>next &rarr;</a>
</nav>
<p class="meta">{{.Date}} &middot; content from {{stamp .Window.Start}} to {{stamp .Window.End}} ({{.Zone}})</p>
{{if .Items}}<ol>
{{range .Items}}  <li><a href="{{.URL}}">{{.Title}}</a><div class="meta">{{.Source}} &middot; {{stamp .PublishedAt}}</div>{{if .Excerpt}}<div>{{.Excerpt}}</div>{{end}}</li>
{{end}}</ol>{{else}}<p>No new items in this period.</p>{{end}}
<script>
(function(){
  var current=document.body.dataset.reportDate;
  fetch("dates.json").then(function(r){return r.json()}).then(function(dates){
    var sel=document.getElementById("dates");sel.innerHTML="";
    dates.slice().reverse().forEach(function(d){var o=document.createElement("option");o.value=d;o.textContent=d;o.selected=d===current;sel.appendChild(o)});
    sel.onchange=function(){location.href=sel.value+".html"};
    var i=dates.indexOf(current);
    function link(id,d){if(d){var a=document.getElementById(id);a.href=d+".html";a.hidden=false}}
    link("prev",dates[i-1]);link("next",i>=0?dates[i+1]:null);
  });
})();
</script>
</body>
</html>
`))
