package suggest

// DefaultPrompt instructs the classifier. The chunk of names follows as a
// JSON array.
const DefaultPrompt = `You consolidate a tag vocabulary.

You receive a JSON array of existing tag names. Find groups of names that mean
the same thing: spelling variants, singular and plural forms, different
casing or spacing, abbreviations next to their expansion.

Rules:
- Use only names that appear in the input, copied exactly.
- For each group pick the best-formatted existing name as "master".
- List every other member of the group in "variations".
- Do not create a group for a name that has no variations.
- A name belongs to at most one group.
- If nothing should be merged, return {"groups": []}.

Respond with JSON only, in this shape:
{"groups": [{"master": "Adrenal Glands", "variations": ["adrenal gland", "adrenalgland"]}]}`
