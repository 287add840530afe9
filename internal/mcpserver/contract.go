package mcpserver

// PageFormatContract describes the canonical format of pages Raido
// publishes, for LLM consumers that read or post-process the output.
const PageFormatContract = `# Raido Published Page Format Contract

Every page Raido publishes follows this structure.

## Source notes

Source notes are Markdown files named using the denote convention:

` + "```" + `
IDENTIFIER--slug__keyword1_keyword2.md
` + "```" + `

- **IDENTIFIER** is a timestamp of the form ` + "`" + `20240115T093000` + "`" + ` and is the
  stable handle for the note.
- **slug** is the kebab-case title.
- **keywords** after ` + "`" + `__` + "`" + ` become the page tags, split on ` + "`" + `_` + "`" + `.

## Published pages

Pages are written to ` + "`" + `<section>/<IDENTIFIER>.md` + "`" + ` and consist of a
synthesized YAML front matter block followed by the note body:

` + "```" + `markdown
---
title: "Weekly standup"
date: "2024-01-15"
last_updated_at: "2024-06-15"
tags: ["meeting-notes", "project-x"]
---

Body text with internal links rewritten to HTML anchors.
` + "```" + `

## Rules

1. The front matter block is delimited by ` + "`" + `---` + "`" + ` lines.
2. Scalar values are double-quoted unless they are numbers, booleans, or
   ISO-8601 timestamps (e.g. ` + "`" + `2024-01-15` + "`" + `, ` + "`" + `2024-01-15T09:30:00Z` + "`" + `).
3. List values are written inline: ` + "`" + `["a", "b"]` + "`" + `. Empty lists are omitted.
4. Fields with no value are omitted entirely.
5. ` + "`" + `last_updated_at` + "`" + ` is the publish time, not the note's modification time.
6. ` + "`" + `category` + "`" + ` appears only when the source note declares it explicitly.

## Internal links

Links of the form ` + "`" + `[label](denote:IDENTIFIER)` + "`" + ` in the source are
rewritten to HTML anchors in the published page:

` + "```" + `html
<a href="denote:20240115T093000.html" class="internal-link">label</a>
` + "```" + `

A query suffix after ` + "`" + `::` + "`" + ` (e.g. ` + "`" + `denote:20240115T093000::#intro` + "`" + `)
is appended verbatim to the destination. Links whose identifier does not
resolve abort publishing of that note; no partial page is written.
`
