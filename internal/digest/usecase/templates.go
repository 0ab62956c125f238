package usecase

const immediateThreadTemplate = `<html>
<body>
	<p>{{.author_username}} started a new thread in {{.placement_path}}:</p>
	<h3>{{.thread_title}}</h3>
	<blockquote>{{.thread_body}}</blockquote>
	<p><a href="{{.site_url}}">Open {{.platform_name}}</a> &middot;
	<a href="{{.preferences_url}}">Notification preferences</a></p>
</body>
</html>`

const immediateCommentTemplate = `<html>
<body>
	<p>{{.author_username}} replied in {{.placement_path}}:</p>
	<blockquote>{{.comment_body}}</blockquote>
	<p><a href="{{.site_url}}">Open {{.platform_name}}</a> &middot;
	<a href="{{.preferences_url}}">Notification preferences</a></p>
</body>
</html>`

const batchDigestTemplate = `<html>
<body>
	<h2>{{.course_name}}</h2>
	{{if .course_image_url}}<img src="{{.course_image_url}}" alt="{{.course_name}}" width="120"/>{{end}}
	<p>Since your last {{.cadence}} digest, {{.placement_path}} has
	{{.new_threads}} new thread(s) and {{.new_comments}} new comment(s).</p>
	<p><a href="{{.site_url}}">Open {{.platform_name}}</a> &middot;
	<a href="{{.preferences_url}}">Notification preferences</a></p>
	<p>&copy; {{.year}} {{.platform_name}}</p>
</body>
</html>`

const legacyDigestTemplate = `<html>
<body>
	<h2>{{.course_name}}</h2>
	<p>Unread activity in {{.placement_path}}:</p>
	{{range .items}}
	<div>
		<h4>{{.ThreadTitle}}</h4>
		<p><strong>{{.AuthorUsername}}</strong>: {{.Body}}</p>
	</div>
	{{end}}
	<p><a href="{{.site_url}}">Open {{.platform_name}}</a> &middot;
	<a href="{{.preferences_url}}">Notification preferences</a></p>
	<p>&copy; {{.year}} {{.platform_name}}</p>
</body>
</html>`
