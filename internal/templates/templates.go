// Package templates renders notification texts with {{name}} placeholders.
package templates

import (
	"fmt"
	"sort"
	"strings"
)

// Template keys used by the workflow
const (
	AbsenceNotification   = "absence_notification"
	EmergencyNotification = "emergency_notification"
	SubstituteRequest     = "substitute_request"
	CustomerNotification  = "customer_notification"
	SubstituteAccepted    = "substitute_accepted"
	SubstituteDeclined    = "substitute_declined"
	SubstituteTooLate     = "substitute_too_late"
	AlreadyAnswered       = "already_answered"
	SubstituteFilledAdmin = "substitute_filled_admin"
	RecruitmentExhausted  = "recruitment_exhausted"
	DeliveryFailedAdmin   = "delivery_failed_admin"
	WorkflowError         = "workflow_error"
	UnknownStaff          = "unknown_staff"
	Unrecognized          = "unrecognized"
	InternalError         = "internal_error"
)

var defaults = map[string]string{
	AbsenceNotification: `【サポート窓口｜{{salon_name}}】当日欠勤報告

👤 スタッフ: {{staff_name}}
📅 欠勤日: {{absence_date}}
🕒 時間: {{absence_time}}
💊 理由: {{absence_reason}}
⏰ 報告時刻: {{report_time}}`,

	EmergencyNotification: `【緊急】{{staff_name}}さん欠勤報告

📋 詳細情報:
- 欠勤日時: {{absence_date}} {{absence_time}}
- 欠勤理由: {{absence_reason}}
- 報告時刻: {{report_time}}
- スタッフ電話: {{staff_phone}}

⚡ 次の対応を実行中:
✅ 代替スタッフ募集開始（{{candidate_count}}名に依頼）
✅ 影響予約の確認
✅ 顧客への連絡準備

管理者による確認が必要です。
管理画面: {{management_url}}`,

	SubstituteRequest: `【緊急】代替出勤のお願い

👤 欠勤スタッフ: {{absent_staff_name}}
📅 欠勤日: {{absence_date}}
🕒 時間: {{absence_time}}
💊 理由: {{absence_reason}}

代わりに出勤していただけますか？

✅ 出勤可能 → "代わりに出勤します"
❌ 出勤不可 → "代わりに出勤できません"

ご回答をお願いいたします。`,

	CustomerNotification: `【重要】ご予約の振替について

お客様: {{customer_name}}
予約日時: {{appointment_date}} {{appointment_time}}
担当スタッフ: {{absent_staff_name}}

申し訳ございませんが、担当スタッフが急遽欠勤することになりました。

代替スタッフ: {{substitute_staff_name}}が担当いたします。

ご都合が悪い場合は、別日への振替も可能です。
お手数ですが、ご連絡をお願いいたします。

📞 お問い合わせ: {{salon_phone}}`,

	SubstituteAccepted: `【代替出勤受諾完了】

{{staff_name}}さん、代替出勤ありがとうございます！
📅 {{absence_date}} {{absence_time}}
💰 代替出勤手当: {{allowance}}

詳細は後ほどご連絡いたします。`,

	SubstituteDeclined: `【代替出勤拒否受付】

{{staff_name}}さん、ご回答ありがとうございます。

他のスタッフに依頼いたします。`,

	SubstituteTooLate: `【代替出勤のご連絡】

{{staff_name}}さん、ご協力ありがとうございます。
{{absence_date}}の代替出勤は既に他のスタッフで決定しました。

またの機会によろしくお願いいたします。`,

	AlreadyAnswered: `{{staff_name}}さん、この代替出勤のご回答は既に受け付けています。`,

	SubstituteFilledAdmin: `【代替スタッフ決定】

欠勤スタッフ: {{absent_staff_name}}
欠勤日時: {{absence_date}} {{absence_time}}
代替スタッフ: {{substitute_staff_name}}
顧客連絡: {{customer_count}}件`,

	RecruitmentExhausted: `【要対応】代替スタッフが見つかりませんでした

欠勤スタッフ: {{absent_staff_name}}
欠勤日時: {{absence_date}} {{absence_time}}
欠勤理由: {{absence_reason}}

全ての候補者から辞退の回答がありました。
管理画面: {{management_url}}`,

	DeliveryFailedAdmin: `【通知エラー】メッセージを送信できませんでした

チャネル: {{channel}}
宛先: {{recipient}}
試行回数: {{attempts}}
エラー: {{error}}`,

	WorkflowError: `【システム警告】欠勤ワークフローで処理できない操作がありました

対象: {{subject}}
エラー: {{error}}`,

	UnknownStaff: `スタッフ情報が見つかりません。管理者にお問い合わせください。`,

	Unrecognized: `申し訳ございません。メッセージを理解できませんでした。`,

	InternalError: `エラーが発生しました。管理者にお問い合わせください。`,
}

// Renderer holds the template set. It is read-only after construction.
type Renderer struct {
	templates map[string]string
}

// NewRenderer returns a renderer with the built-in templates, replaced by any non-empty overrides
func NewRenderer(overrides map[string]string) *Renderer {
	templates := make(map[string]string, len(defaults))
	for key, text := range defaults {
		templates[key] = text
	}
	for key, text := range overrides {
		if strings.TrimSpace(text) != "" {
			templates[key] = text
		}
	}
	return &Renderer{templates: templates}
}

// Render substitutes {{name}} placeholders. Placeholders without a value are left as-is.
func (r *Renderer) Render(key string, vars map[string]string) (string, error) {
	text, ok := r.templates[key]
	if !ok {
		return "", fmt.Errorf("unknown template %q", key)
	}
	if len(vars) == 0 {
		return text, nil
	}

	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{{"+name+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(text), nil
}

// Text is Render for the package's own keys; an unknown key yields the empty string
func (r *Renderer) Text(key string, vars map[string]string) string {
	text, _ := r.Render(key, vars)
	return text
}

// Keys lists the available template keys in sorted order
func (r *Renderer) Keys() []string {
	keys := make([]string, 0, len(r.templates))
	for key := range r.templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
