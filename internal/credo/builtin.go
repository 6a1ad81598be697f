package credo

var builtin = []Entry{
	{1, "経営者目線", []string{
		"常に会社全体の利益と成長を考え、長期的視野で意思決定を行う。",
		"経営課題を自分事として捉え、オーナーシップを持って行動する。",
		"資源の有効活用を意識し、投資対効果を最大化する。",
		"事業戦略を理解し、日々の業務に経営視点を取り入れる。",
		"売上やコストの観点から業務プロセスを最適化する。",
	}},
	{2, "好奇心100倍", []string{
		"未知の領域にも果敢に挑戦し、新たな知見を積極的に吸収する。",
		"疑問を持ったらすぐに調査し、深く掘り下げる姿勢を大切にする。",
		"常に『なぜ？』を忘れず、成長の原動力とする。",
		"日常の小さな発見を軽視せず、好奇心を原動力に変える。",
		"新しい技術やアイデアに対して貪欲に情報収集する。",
	}},
	{3, "世界最速", []string{
		"迅速かつ高品質な成果物を提供し、他社に差をつける。",
		"スピード感を持って課題解決に取り組み、常に先手を打つ。",
		"短期間で成果を出すことを意識し、無駄を排除する。",
		"リードタイムを最短化し、クライアントの期待を超える。",
		"決断を素早く行い、行動に移すスピードを追求する。",
	}},
	{4, "言葉の達人", []string{
		"適切な言葉選びで、相手にわかりやすく情報を伝える。",
		"言葉の持つ力を理解し、説得力のあるコミュニケーションを行う。",
		"専門用語を咀嚼し、誰にでも理解できる表現に置き換える。",
		"声のトーンや話し方にも注意を払い、信頼感を醸成する。",
		"言葉で相手の心を動かし、共感を生む対話を心がける。",
	}},
	{5, "問題解決のプロ", []string{
		"表面的な対症療法に終始せず、根本原因を徹底的に探ることで真の解決を図る。",
		"複雑な課題も要素分解し、論理的に解決策を導き出す。",
		"仮説を立てて迅速に検証し、最適解を見つけるアプローチを重視する。",
		"多角的な視点で問題を捉え、抜本的な改善を追求する。",
		"チームと連携して情報を集約し、効率的に課題を解決する。",
	}},
	{6, "超一流の教育者", []string{
		"相手の理解度に合わせて、最適なタイミングで知識を提供する。",
		"学習意欲を引き出す工夫を凝らし、主体的な学びを支援する。",
		"フィードバックを欠かさず、成長を促す環境を整える。",
		"教育コンテンツを分かりやすく構造化し、効率的に伝える。",
		"相手の立場に立って指導し、信頼関係を築く。",
	}},
	{7, "団結邁進", []string{
		"チームの目標を共有し、一丸となって前進する。",
		"メンバー同士が助け合い、高いパフォーマンスを発揮する。",
		"相互信頼を基盤に、困難な課題にも協力して立ち向かう。",
		"情報をオープンにし、全員が主体的に動ける環境を作る。",
		"チームワークを重視し、全員の力を結集して成果を生み出す。",
	}},
	{8, "売上最大・経費最小", []string{
		"コスト意識を持って業務に取り組み、無駄を削減する。",
		"ROIを常に意識し、投資効果の最大化を図る。",
		"営業と経費管理のバランスを取り、効率的に利益を追求する。",
		"固定費と変動費を見極め、最適なコスト構造を実現する。",
		"売上拡大のための戦略とコスト削減策を同時に実行する。",
	}},
	{9, "No.1 の精神", []string{
		"常にトップを目指し、現状に満足せず成長し続ける。",
		"競合に負けない品質とサービスを提供することを追求する。",
		"一歩先を行くアイデアと行動でリーダーシップを発揮する。",
		"自己ベンチマークを設定し、日々改善を繰り返す。",
		"チーム全体でNo.1を目指し、成功体験を共有する。",
	}},
	{10, "率先邁進", []string{
		"自ら率先して行動し、周囲を巻き込んで成果を生む。",
		"先頭に立って課題にチャレンジし、道を切り開く。",
		"新しい取り組みに自信を持って挑戦し、模範を示す。",
		"指示を待たずに自主的に動き、チームを牽引する。",
		"行動力で周囲を鼓舞し、前進を促す。",
	}},
	{11, "「相手」第一主義", []string{
		"相手のニーズを最優先に考え、最適な提案を行う。",
		"一度話を聞いたら、その意図を深く理解し、期待以上のサービスを提供する。",
		"利害よりも信頼を重視し、相手本位のコミュニケーションを取る。",
		"相手の立場に立ち、言動ひとつひとつに思いやりを持って接する。",
		"相手が抱える課題を自分のことのように捉え、全力でサポートする。",
	}},
	{12, "謙虚・誠実・熱心", []string{
		"成果に驕らず、常に謙虚な姿勢で学び続ける。",
		"誠実なコミュニケーションで信頼を築き、約束を守る。",
		"熱意を持って取り組み、困難にも前向きに挑む。",
		"周囲への感謝を忘れず、誠実に業務に臨む。",
		"謙虚さと情熱を両立させ、チームに良い影響を与える。",
	}},
	{13, "微差が大差", []string{
		"小さな改善を積み重ねることで大きな成果につなげる。",
		"細部へのこだわりが全体のクオリティを飛躍的に高める。",
		"日々のわずかな差が競合との差を生む原動力となる。",
		"小さな変化に気づき、速やかに実践することで大きなアドバンテージを得る。",
		"微細な分析を怠らず、最適解を追求し続ける。",
	}},
}
