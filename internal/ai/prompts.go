package ai

const jsonGuard = `
Reply with valid JSON ONLY.
No text outside the JSON object.
Format:
{"title":"string"}
Any other format is discarded.
`

const TitlePrompt = `
You label support requests for a rental and PG listing platform.

You receive the conversation between a website visitor and the support bot,
plus the visitor type (tenant, agent or unknown).

Write a title for the employee console:
- at most 8 words
- name the concrete problem (e.g. "Leaking kitchen tap in flat 4B")
- no greetings, no names, no punctuation at the end
- if the problem is unclear, describe what the visitor asked about

Answer strictly as JSON:

{"title":"..."}
`
