package http

import "net/http"

// handleIndex renders the chat UI with SSE streaming and file upload.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	html := `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>docchat</title>
    <style>
        body { font-family: sans-serif; max-width: 760px; margin: 0 auto; padding: 1rem; }
        #chat-container { height: 60vh; overflow-y: auto; border: 1px solid #ccc; border-radius: 6px; padding: 0.5rem; }
        .message { margin: 0.5rem 0; padding: 0.5rem; border-radius: 6px; }
        .message.user { background: #e8f0fe; }
        .message.assistant { background: #f5f5f5; }
        .message .sources { font-size: 0.8rem; color: #666; margin-top: 0.3rem; }
        .message.error { color: #b00; }
        form { display: flex; gap: 0.5rem; margin-top: 0.5rem; }
        #query-input { flex: 1; padding: 0.5rem; }
    </style>
</head>
<body>
    <header>
        <h1>docchat</h1>
        <p>Upload documents, then ask questions about them.</p>
    </header>

    <form id="upload-form" onsubmit="uploadFile(event)">
        <input type="file" id="file-input" accept=".txt,.md,.pdf,.csv,.tsv" required>
        <button type="submit">Upload</button>
        <span id="upload-status"></span>
    </form>

    <div id="chat-container"><div id="messages"></div></div>

    <form id="query-form" onsubmit="sendQuery(event)">
        <input type="text" id="query-input" placeholder="Ask about your documents..." autocomplete="off" required>
        <button type="submit">Send</button>
    </form>

    <script>
        let sessionId = '';

        function uploadFile(e) {
            e.preventDefault();
            const input = document.getElementById('file-input');
            const status = document.getElementById('upload-status');
            const form = new FormData();
            form.append('file', input.files[0]);
            status.textContent = 'Uploading...';
            fetch('/api/upload', { method: 'POST', body: form })
                .then(r => r.ok ? r.json() : r.text().then(t => { throw new Error(t); }))
                .then(data => {
                    status.textContent = data.skipped
                        ? data.source_name + ' already indexed'
                        : data.source_name + ': ' + data.chunks_added + ' chunks';
                })
                .catch(err => { status.textContent = err.message; });
        }

        function sendQuery(e) {
            e.preventDefault();
            const input = document.getElementById('query-input');
            const messages = document.getElementById('messages');
            const query = input.value.trim();
            if (!query) return;

            messages.innerHTML += '<div class="message user">' + escapeHtml(query) + '</div>';
            const responseId = 'response-' + Date.now();
            messages.innerHTML += '<div class="message assistant" id="' + responseId + '">...</div>';
            input.value = '';

            const container = document.getElementById('chat-container');
            container.scrollTop = container.scrollHeight;

            const url = '/api/chat/stream?q=' + encodeURIComponent(query) +
                '&session=' + encodeURIComponent(sessionId);
            const eventSource = new EventSource(url);
            const responseEl = document.getElementById(responseId);
            let fullResponse = '';
            let sourcesLine = '';

            eventSource.onmessage = function(event) {
                const data = JSON.parse(event.data);
                if (data.session) {
                    sessionId = data.session;
                    const names = [...new Set((data.sources || []).map(s => s.source_name))];
                    sourcesLine = names.length
                        ? '<div class="sources">Sources: ' + names.map(escapeHtml).join(', ') + '</div>'
                        : '<div class="sources">No matching documents</div>';
                    return;
                }
                if (data.error) {
                    eventSource.close();
                    responseEl.innerHTML = '<span class="error">' + escapeHtml(data.error) + '</span>';
                    return;
                }
                if (data.content) {
                    fullResponse += data.content;
                    responseEl.innerHTML = escapeHtml(fullResponse);
                    container.scrollTop = container.scrollHeight;
                }
                if (data.done) {
                    eventSource.close();
                    responseEl.innerHTML = escapeHtml(fullResponse || 'No response') + sourcesLine;
                }
            };

            eventSource.onerror = function() {
                eventSource.close();
                responseEl.innerHTML = escapeHtml(fullResponse) ||
                    '<span class="error">Connection error</span>';
            };
        }

        function escapeHtml(text) {
            const div = document.createElement('div');
            div.textContent = text;
            return div.innerHTML;
        }
    </script>
</body>
</html>`

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}
