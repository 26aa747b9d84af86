package session

import "interviewpro/internal/model"

// DefaultPool is the question bank before anyone customizes it.
var DefaultPool = []model.Question{
	{ID: "g1", Category: "General", Text: "우리 회사에 지원하게 된 가장 큰 동기는 무엇인가요?"},
	{ID: "g2", Category: "General", Text: "본인의 커리어에서 가장 중요하게 생각하는 가치는?"},
	{ID: "g3", Category: "General", Text: "동료와 갈등이 생겼을 때 본인만의 해결 방법은?"},

	{ID: "sw1", Category: "SW", Text: "최근에 해결했던 기술적 난제와 해결 방법은 무엇인가요?"},
	{ID: "sw2", Category: "SW", Text: "코드 리뷰 시 가장 중요하게 생각하는 포인트는?"},
	{ID: "sw3", Category: "SW", Text: "대규모 트래픽 처리 경험이나 성능 최적화 사례가 있나요?"},
	{ID: "sw4", Category: "SW", Text: "본인이 선호하는 기술 스택과 그 이유는 무엇인가요?"},

	{ID: "po1", Category: "PO", Text: "데이터 기반으로 의사결정을 내렸던 구체적인 사례를 말씀해주세요."},
	{ID: "po2", Category: "PO", Text: "이해관계자들 간의 의견 대립을 어떻게 조율하시나요?"},
	{ID: "po3", Category: "PO", Text: "제품의 성공을 측정하는 본인만의 핵심 지표(KPI)는 무엇인가요?"},
	{ID: "po4", Category: "PO", Text: "우선순위 설정 시 가장 중요하게 고려하는 기준은 무엇인가요?"},

	{ID: "de1", Category: "Design", Text: "사용자 경험(UX) 개선을 위해 데이터를 활용한 사례가 있나요?"},
	{ID: "de2", Category: "Design", Text: "디자인 시스템 구축 및 관리 경험이 있으신가요?"},
	{ID: "de3", Category: "Design", Text: "개발자와의 협업 시 디자인 의도를 전달하는 본인만의 노하우는?"},

	{ID: "hr1", Category: "Culture", Text: "가장 일하기 좋았던 조직의 특징은 무엇이었나요?"},
	{ID: "hr2", Category: "Culture", Text: "본인이 생각하는 이상적인 리더십의 모습은?"},

	// 일하는 방식 1: 우리 모두의 일로 여긴다
	{ID: "culture1", Category: "Culture", Text: "회사의 최우선 목표와 중요한 일이라면 망설임 없이 도와서 해결한 경험이 있나요? 구체적으로 말씀해주세요."},
	{ID: "culture2", Category: "Culture", Text: "\"나와 나의 일을 구분하지 않아요\" - 회사의 문제를 본인의 문제처럼 생각하고 해결했던 사례가 있나요?"},
	// 2: 실수는 공개하고 해결한다
	{ID: "culture3", Category: "Culture", Text: "업무 중 실수를 했을 때, 어떻게 공개하고 해결했나요? 구체적인 사례를 말씀해주세요."},
	{ID: "culture4", Category: "Culture", Text: "누구라도 실수를 할 수 있다고 생각하시나요? 실수를 반복하지 않도록 한 본인만의 방법이 있나요?"},
	{ID: "culture5", Category: "Culture", Text: "\"그럴 수도 있어요. 그럼 반복하지 않도록 어떻게 하면 좋을까요?\" - 실수를 개선의 기회로 만든 경험이 있나요?"},
	// 3: 경청하고 예의 바르게 말한다
	{ID: "culture6", Category: "Culture", Text: "팀원의 의견을 경청하고 존중했던 구체적인 사례가 있나요?"},
	{ID: "culture7", Category: "Culture", Text: "어려운 피드백을 전달해야 했던 상황에서, 어떻게 솔직하면서도 예의 바르게 이야기했나요?"},
	{ID: "culture8", Category: "Culture", Text: "\"마이크 들리지 않아요\" - 상대방이 제대로 이해했는지 확인하며 소통한 경험이 있나요?"},
	// 4: 맥락과 배경을 공유한다
	{ID: "culture9", Category: "Culture", Text: "업무 공유 시 배경과 맥락을 충분히 설명해서 팀의 이해를 도운 사례가 있나요?"},
	{ID: "culture10", Category: "Culture", Text: "\"왜?\"라는 질문을 서로가 어려워하지 않도록 한 경험이 있나요?"},
	{ID: "culture11", Category: "Culture", Text: "\"모든 사람이 알고 있다는 가정 하에 이야기 하지 않아요\" - 정보 비대칭을 해소했던 사례를 말씀해주세요."},
	// 5: NO 보다 YES
	{ID: "culture12", Category: "Culture", Text: "불가능해 보이는 요청에도 대안을 제시하며 긍정적으로 고려해본 경험이 있나요?"},
	{ID: "culture13", Category: "Culture", Text: "반대를 위한 반대는 하지 않고, 건설적인 대안을 제시했던 사례가 있나요?"},
	{ID: "culture14", Category: "Culture", Text: "\"못해요, 싫어요, 안돼요는 안돼요\" - 긍정적인 태도로 문제를 해결했던 경험을 말씀해주세요."},
	// 6: 회사에 도움이 되는 방향으로 결정한다
	{ID: "culture15", Category: "Culture", Text: "회사의 이익과 목표를 최우선으로 두고 결정을 내렸던 구체적인 사례가 있나요?"},
	{ID: "culture16", Category: "Culture", Text: "개인적으로 해야 할 일이 있더라도, 회사의 중요한 일을 우선시했던 경험이 있나요?"},
	{ID: "culture17", Category: "Culture", Text: "\"한 마음 한 뜻으로 모여요\" - 팀의 목표를 위해 본인의 의견을 조율했던 사례를 말씀해주세요."},
}

func defaultPool() []model.Question {
	return append([]model.Question(nil), DefaultPool...)
}
