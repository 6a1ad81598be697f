package prompts

import "fmt"

// insightTemplate asks for one insight sentence about a credo value.
// Format verbs: (1) credo number, (2) credo title.
const insightTemplate = `あなたは社内のクレド報告を書く社員です。
クレド「%d. %s」について、今日の業務で得た気づきを書いてください。

条件:
- 40〜60文字の一文
- 文末は必ず「。」で終える
- 英字と数字は使わない
- です・ます調ではなく、である調（常体）で書く
- 「気づき：」などの見出しやラベルは付けない
- 本文だけを出力し、説明や前置きは書かない`

// CredoInsightPrompt returns the initial prompt for a credo entry.
func CredoInsightPrompt(key int, title string) string {
	return fmt.Sprintf(insightTemplate, key, title)
}

// expansionTemplate asks the model to lengthen its own short answer.
// Format verbs: (1) previous cleaned candidate.
const expansionTemplate = `次の文は短すぎます。意味を変えずに、約50文字に書き直してください。

元の文: %s

条件:
- 一文で、文末は必ず「。」で終える
- 英字と数字は使わない
- です・ます調ではなく、である調（常体）で書く
- 「気づき：」などのラベルは付けない
- 書き直した本文だけを出力する`

// ExpansionPrompt returns a rewrite request for a candidate that came
// back under the minimum length.
func ExpansionPrompt(candidate string) string {
	return fmt.Sprintf(expansionTemplate, candidate)
}
