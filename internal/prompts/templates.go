package prompts

// SystemPrompt frames every annotation completion request.
const SystemPrompt = "You are an expert annotator. Your task is to analyze text samples according to specific guidelines and handle edge cases systematically."

// Template placeholders. Overrides stored in the database use the same
// markers and are filled identically.
const (
	placeholderGuideline = "{guideline}"
	placeholderText      = "{text}"
	placeholderEdgeCases = "{edge_cases}"
)

const annotateTemplate = `Here is the annotation task:
<annotation_guideline>
{guideline}
</annotation_guideline>

Required Workflow:
1. Granular Analysis:
Systematically evaluate the text against EVERY criterion in the guidelines. For each requirement:
    - State the specific guideline component being checked
    - Explicitly state whether it is satisfied/not satisfied
    - Cite relevant text evidence

2. Annotation: Combine your analysis to determine the final label. If the sample is unclassifiable given the guidelines and defined labels, annotate -1.

3. Confidence Assessment:
Rate your annotation confidence from 0-100. If the sample is ambiguous given the guideline and no edge case handling strategy applies, give a low score. If the sample exhibits clear evidence according to the guideline or an applicable edge case handling rule exists, give a high score.

4. New Edge Case or Not:
The case is a new edge case if:
   - Confidence <= 75 or annotation = -1; AND
   - It is not covered by existing edge case handling rules. (Classifying -1 by following an existing rule or the guideline itself is not a new edge case.)

5. New Edge Case Rule:
If it is a new edge case, propose a generalizable rule, sticking to the format: "When <observable condition> -> <action>"
The <observable condition> must be general enough to cover similar cases, not specific to this one sample.
Examples:
- "When X and Y co-occur but Z is absent -> classify as xxx"
- "If context suggests both A and B -> refuse to classify (-1)"

If it is not a new edge case, output the string "EMPTY".

Response Format:
{
  "analysis": "Step-by-step evaluation of ALL guideline criteria with text evidence",
  "annotation": "Final label or -1 if unclassifiable",
  "confidence": Integer 0-100 indicating your annotation confidence,
  "new_edge_case": Boolean true or false,
  "new_edge_case_rule": "If it is a new edge case, give a rule in 'When <condition> -> <action>' format (do not forget the arrow ->); otherwise write EMPTY"
}

<text_to_annotate>
{text}
</text_to_annotate>`

const aggregateTemplate = `I am annotating the following task:

<annotation_guideline>
{guideline}
</annotation_guideline>

While annotating, I encountered these edge cases that are not clearly addressed in the guideline:
<edge_cases>
{edge_cases}
</edge_cases>
Each edge case is numbered (1, 2, 3, ...) and follows the format:
"when <condition> -> <action>",
where <condition> describes the edge case and <action> states how to handle it.

Your task:
Create a set of high-level categories that cover all the edge cases above.

Requirements:
1. Every edge case must be assigned to a category, no exceptions.
2. Categories should summarize the edge cases at a high level; avoid creating too many.
3. Iteratively refine your category list: split categories that overgeneralize, merge categories that overlap significantly.
4. Category descriptions MUST follow the format "when <summarized condition> -> <generalized action>", starting with "when" and with condition and action connected by "->".

Please reply in the following JSON format:
` + "```json" + `
{
  "categories": [
    {
      "category_description": "when <summarized condition> -> <generalized action>",
      "edge_cases": [<edge case numbers, e.g., 1, 5, 6>]
    }
  ]
}
` + "```"

const mergeTemplate = `I am annotating the following task:

<annotation_guideline>
{guideline}
</annotation_guideline>

While annotating, I encountered these edge cases that are not clearly addressed in the guideline:
<edge_cases>
{edge_cases}
</edge_cases>
Each edge case is numbered (1, 2, 3, ...) and follows the format:
"when <condition> -> <action>",
where <condition> describes the edge case and <action> states how to handle it.

Your task:
If there are edge cases that describe VERY similar situations, merge them by grouping the relevant edge case numbers together.

Requirements:
1. Only merge very similar cases.
2. Supply one merged description per group.

Please respond in the following format:
<format>
Merge Suggestions:
Merge [list 1 of edge case numbers]: when <merged condition> -> <merged action>
Merge [list 2 of edge case numbers]: when <merged condition> -> <merged action>
...
</format>

If there is no merge suggestion, write NO MERGE after "Merge Suggestions:".`

var templates = map[Stage]string{
	StageAnnotate:  annotateTemplate,
	StageAggregate: aggregateTemplate,
	StageMerge:     mergeTemplate,
}

// Template returns the built-in default template for a pipeline stage.
// Returns ErrInvalidStage if the stage is not recognized.
func Template(stage Stage) (string, error) {
	text, ok := templates[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
