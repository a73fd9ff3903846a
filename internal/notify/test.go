package notify

import (
	"context"

	"jobradar/internal/model"
)

// SendTestMessage pushes a synthetic posting through n to verify the
// delivery path end to end.
func SendTestMessage(n model.Notifier) error {
	testPosting := model.Posting{
		Candidate: model.Candidate{
			ID:        0,
			Company:   "JobRadar",
			Title:     "Test Notification — Integration Verified",
			DetailURL: "https://inthiswork.com",
		},
		CategoryLabel: "기타",
		Summary:       "웹훅 연동 테스트 메시지입니다. 이 메시지가 보이면 전송 경로가 정상입니다.",
	}
	return n.Notify(context.Background(), []model.Posting{testPosting})
}
