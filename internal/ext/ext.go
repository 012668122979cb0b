// Package ext 汇总内置插件，导入即完成注册
package ext

import (
	_ "ckan-go/internal/ext/audioview"
	_ "ckan-go/internal/ext/datapusher"
	_ "ckan-go/internal/ext/exampleiauthfunctions"
	_ "ckan-go/internal/ext/exampleiresourcecontroller"
	_ "ckan-go/internal/ext/exampleivalidators"
)
