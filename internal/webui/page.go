// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

package webui

// indexHTML is the whole frontend. Deliberately unstyled beyond the basics:
// the page exists to exercise the execute endpoint from a browser, including
// abort-on-resubmit via AbortController.
const indexHTML = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>pyrun</title>
<style>
body { font-family: sans-serif; max-width: 56rem; margin: 2rem auto; }
textarea { width: 100%; height: 14rem; font-family: monospace; }
pre { background: #f4f4f4; padding: .5rem; white-space: pre-wrap; }
.error { color: #b00020; }
.muted { color: #777; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: .2rem .5rem; }
</style>
</head>
<body>
<h1>pyrun</h1>
<textarea id="code" placeholder="print('hello')"></textarea>
<p>
  <label><input type="radio" name="mode" value="script" checked> script</label>
  <label><input type="radio" name="mode" value="function"> function</label>
  <button id="run">Run</button>
  <span id="status" class="muted"></span>
</p>
<div id="out"></div>
<script>
let controller = null;

async function run() {
  // One active request per session: a resubmission aborts the previous one.
  if (controller) controller.abort();
  controller = new AbortController();
  const mine = controller;

  const status = document.getElementById('status');
  const out = document.getElementById('out');
  status.textContent = 'running…';

  try {
    const resp = await fetch('/api/execute', {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      signal: mine.signal,
      body: JSON.stringify({
        code: document.getElementById('code').value,
        mode: document.querySelector('input[name=mode]:checked').value,
      }),
    });
    const body = await resp.json();
    if (mine !== controller) return; // a newer submission owns the view now
    if (!resp.ok) {
      out.innerHTML = '';
      addPre(out, body.message || 'request failed', 'error');
      status.textContent = '';
      return;
    }
    renderPlan(out, body.plan);
    status.textContent = '';
  } catch (e) {
    if (e.name === 'AbortError') {
      status.textContent = 'cancelled';
      return;
    }
    if (mine !== controller) return;
    out.innerHTML = '';
    addPre(out, 'network error: ' + e.message, 'error');
    status.textContent = '';
  }
}

function addPre(parent, text, cls) {
  const pre = document.createElement('pre');
  if (cls) pre.className = cls;
  pre.textContent = text;
  parent.appendChild(pre);
}

function renderPlan(out, plan) {
  out.innerHTML = '';
  for (const p of plan.panels) {
    switch (p.type) {
    case 'error': addPre(out, p.text, 'error'); break;
    case 'stdout':
      if (p.text) addPre(out, p.text);
      else { const s = document.createElement('p'); s.className = 'muted'; s.textContent = '(' + p.caption + ')'; out.appendChild(s); }
      break;
    case 'visualization':
    case 'image': {
      const img = document.createElement('img');
      const data = p.image_data.startsWith('data:') ? p.image_data
        : 'data:image/' + (p.image_format || 'png') + ';base64,' + p.image_data;
      img.src = data;
      img.alt = p.caption || '';
      out.appendChild(img);
      if (p.caption) { const c = document.createElement('p'); c.className = 'muted'; c.textContent = p.caption; out.appendChild(c); }
      break;
    }
    case 'table': {
      const tbl = document.createElement('table');
      const hr = tbl.insertRow();
      for (const col of p.columns || []) {
        const th = document.createElement('th');
        th.textContent = col.dtype ? col.name + ' (' + col.dtype + ')' : col.name;
        hr.appendChild(th);
      }
      for (const row of p.rows || []) {
        const tr = tbl.insertRow();
        for (const cell of row) tr.insertCell().textContent = cell;
      }
      out.appendChild(tbl);
      if (p.summary) { const s = document.createElement('p'); s.className = 'muted'; s.textContent = '… ' + p.summary; out.appendChild(s); }
      break;
    }
    case 'list': {
      const ul = document.createElement('ul');
      for (const it of p.items || []) {
        const li = document.createElement('li');
        li.textContent = it.key + ': ' + it.value;
        ul.appendChild(li);
      }
      out.appendChild(ul);
      if (p.summary) { const s = document.createElement('p'); s.className = 'muted'; s.textContent = '… ' + p.summary; out.appendChild(s); }
      break;
    }
    case 'repr': addPre(out, p.text); if (p.caption) { const c = document.createElement('p'); c.className = 'muted'; c.textContent = p.caption; out.appendChild(c); } break;
    case 'json': addPre(out, p.text); break;
    case 'text': addPre(out, p.text); break;
    case 'notice': { const s = document.createElement('p'); s.className = 'muted'; s.textContent = p.text; out.appendChild(s); break; }
    case 'metrics': {
      const m = p.metrics;
      const s = document.createElement('p');
      s.className = 'muted';
      s.textContent = 'time ' + m.execution_time + 's · cpu ' + m.cpu_time + 's · peak mem ' +
        m.memory_peak + ' MB · ' + m.code_lines + ' lines · ' + m.output_bytes + ' B output · ' +
        m.libraries + ' libraries';
      out.appendChild(s);
      break;
    }
    }
  }
}

document.getElementById('run').addEventListener('click', run);
</script>
</body>
</html>
`
