// Package main 启动应用程序
package main

import "github.com/lostyway/cloud-file-storage/pkg/cmd"

//	@title			Cloud File Storage API
//	@version		1.0
//	@description	多租户对象存储网关，提供文件/目录管理、打包下载与文档入库异步处理能力。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

func main() {
	if err := cmd.Execute(); err != nil {
		panic(err)
	}
}
